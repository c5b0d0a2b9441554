/*
Package tmpl provides placeholder template processing for Mailout.

Templates are plain strings containing {fieldName} tokens. Tokens are
substituted from a per-recipient field map; a token with no matching
field renders as an empty string and is logged as a warning, never an
error.
*/
package tmpl

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrBadTemplate indicates a template file that cannot be read or that
// yields no body.
var ErrBadTemplate = errors.New("bad template")

// Delimiter separates the subject line from the body in template files.
const Delimiter = "---"

var tokenRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Spec holds the templates for one run. Loaded once at startup and
// immutable afterwards.
type Spec struct {
	Subject  string
	Body     string
	HTMLBody string
}

// Render substitutes {field} tokens in template with values from fields.
// Unresolved tokens become empty strings and are logged.
func Render(template string, fields map[string]string) string {
	return tokenRe.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := fields[name]
		if !ok {
			log.Warn("Unresolved template placeholder", "token", token)
		}
		return value
	})
}

// Render renders the subject, text body, and optional HTML body for one
// recipient's field map.
func (s Spec) Render(fields map[string]string) (subject, text, html string) {
	subject = Render(s.Subject, fields)
	text = Render(s.Body, fields)
	if s.HTMLBody != "" {
		html = Render(s.HTMLBody, fields)
	}
	return subject, text, html
}

// LoadFile reads a template file and splits it into subject and body.
//
// The format is an optional subject line followed by a line containing
// exactly "---" and the body. Without the delimiter the whole file is the
// body and the subject is left empty for the caller to default.
func LoadFile(path string) (subject, body string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrBadTemplate, path, err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == Delimiter {
			subject = strings.TrimSpace(strings.Join(lines[:i], "\n"))
			body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			if body == "" {
				return "", "", fmt.Errorf("%w: %s: no body after delimiter", ErrBadTemplate, path)
			}
			return subject, body, nil
		}
	}

	body = strings.TrimSpace(content)
	if body == "" {
		return "", "", fmt.Errorf("%w: %s: empty template", ErrBadTemplate, path)
	}
	return "", body, nil
}
