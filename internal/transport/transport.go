/*
Package transport provides SMTP delivery for Mailout.
*/
package transport

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mail "gopkg.in/mail.v2"
)

// Sender delivers built messages. The SMTP implementation holds one
// authenticated connection for the whole batch; tests substitute fakes.
type Sender interface {
	Send(m *mail.Message) error
	Close() error
}

// SMTP is a Sender over a single dialed SMTP session.
type SMTP struct {
	sc mail.SendCloser
}

// Dial connects and authenticates to the SMTP server. Port 587 uses
// STARTTLS. An authentication or connection failure here aborts the run
// before any message is attempted.
func Dial(host string, port int, username, password string, timeout time.Duration) (*SMTP, error) {
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = timeout
	d.StartTLSPolicy = mail.MandatoryStartTLS

	log.Info("Connecting to SMTP server", "host", host, "port", port)
	sc, err := d.Dial()
	if err != nil {
		return nil, fmt.Errorf("smtp connect %s:%d: %w", host, port, err)
	}
	log.Debug("SMTP session established", "user", username)

	return &SMTP{sc: sc}, nil
}

// Send transmits one message over the open session.
func (t *SMTP) Send(m *mail.Message) error {
	return mail.Send(t.sc, m)
}

// Close terminates the SMTP session.
func (t *SMTP) Close() error {
	return t.sc.Close()
}
