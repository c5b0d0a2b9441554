/*
Package message builds transmissible MIME messages for Mailout.
*/
package message

import (
	"errors"
	"fmt"
	"os"

	mail "gopkg.in/mail.v2"
)

// ErrAttachment indicates a referenced attachment file that does not exist.
var ErrAttachment = errors.New("attachment not found")

// Email is the rendered content for one recipient, ready to be built
// into a MIME message.
type Email struct {
	From        string
	FromName    string
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []string
}

// Build assembles a MIME message. When HTML is set the message carries a
// text part with an HTML alternative preferred by capable clients. Every
// attachment path is checked for existence first; a missing file fails
// the build for this recipient only.
func Build(e Email) (*mail.Message, error) {
	for _, path := range e.Attachments {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrAttachment, path)
		}
	}

	m := mail.NewMessage()
	if e.FromName != "" {
		m.SetAddressHeader("From", e.From, e.FromName)
	} else {
		m.SetHeader("From", e.From)
	}
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)

	m.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		m.AddAlternative("text/html", e.HTML)
	}

	for _, path := range e.Attachments {
		m.Attach(path)
	}

	return m, nil
}
