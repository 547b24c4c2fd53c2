package util

import (
	"net/http"
	"path"
	"strings"
)

var documentContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".txt":  "text/plain; charset=utf-8",
}

// Extension returns the lower-cased extension of name including the dot.
func Extension(name string) string {
	return strings.ToLower(path.Ext(strings.TrimSpace(name)))
}

func HasAllowedExtension(name string, allowed []string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}

	for _, candidate := range allowed {
		if strings.ToLower(strings.TrimSpace(candidate)) == ext {
			return true
		}
	}

	return false
}

// DocumentContentType picks the part content type for an upload. Known
// document extensions win; otherwise the leading bytes are sniffed.
func DocumentContentType(name string, head []byte) string {
	if ct, ok := documentContentTypes[Extension(name)]; ok {
		return ct
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}

	return http.DetectContentType(head)
}
