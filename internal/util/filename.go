package util

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"rag-console/pkg/apierror"
)

const maxFilenameRunes = 255

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// CleanUploadName reduces a client supplied filename to a safe base name.
// Some browsers send the full local path, so only the last element is kept.
func CleanUploadName(name string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if trimmed == "" {
		return "", apierror.New("INVALID_FILENAME", "filename cannot be empty", "", 400)
	}
	if strings.ContainsRune(trimmed, 0) {
		return "", apierror.New("INVALID_FILENAME", "filename contains null bytes", "", 400)
	}

	base := path.Base(trimmed)

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(b.String(), "_"))
	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == "/" {
		return "", apierror.New("INVALID_FILENAME", "filename is invalid after sanitization", trimmed, 400)
	}

	return truncateKeepingExtension(cleaned, maxFilenameRunes), nil
}

func truncateKeepingExtension(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}

	ext := []rune(path.Ext(name))
	if len(ext) >= limit {
		return string(runes[:limit])
	}

	stem := runes[:len(runes)-len(ext)]
	return string(stem[:limit-len(ext)]) + string(ext)
}
