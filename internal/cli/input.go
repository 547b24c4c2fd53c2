package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"rag-console/pkg/apierror"
)

// readPassword is a test seam for term.ReadPassword on stdin.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// prompt prints label and reads one trimmed line. EOF after partial input
// still returns that input.
func (c *CLI) prompt(label string) (string, error) {
	fmt.Fprint(c.errOut, label)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (c *CLI) password() (string, error) {
	fmt.Fprint(c.errOut, "Password: ")
	pw, err := readPassword()
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(pw), nil
}

// errorText prefers the backend's own message over the wrapped error chain.
func errorText(err error) string {
	if detail := apierror.UpstreamDetail(err); detail != "" {
		return detail
	}
	return err.Error()
}
