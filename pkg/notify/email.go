package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

// Mailer sends a prepared email over SMTP.
type Mailer interface {
	Send(addr string, auth smtp.Auth, e *email.Email) error
}

type smtpMailer struct{}

func (smtpMailer) Send(addr string, auth smtp.Auth, e *email.Email) error {
	return e.Send(addr, auth)
}

// Email sends notifications over SMTP.
type Email struct {
	Server   string        // SMTP host
	Port     int           // default: 587
	Username string        // also used as sender address
	Password string
	To       []string      // recipients (required)
	Subject  string        // default: "Appointments might be available"
	Timeout  time.Duration // bound for the whole SMTP exchange (default: 30s)
	Mailer   Mailer        // injected for testing
}

// Notify sends the message as a plain text email. Servers that do not
// support AUTH are retried without credentials. net/smtp has no deadlines,
// so a stalled server is abandoned when ctx or Timeout expires.
func (e *Email) Notify(ctx context.Context, message string) error {
	if e.Server == "" || len(e.To) == 0 {
		return fmt.Errorf("smtp server and recipients are required")
	}

	port := e.Port
	if port == 0 {
		port = 587
	}
	subject := e.Subject
	if subject == "" {
		subject = "Appointments might be available"
	}
	timeout := e.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	mailer := e.Mailer
	if mailer == nil {
		mailer = smtpMailer{}
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("terminwatch <%s>", e.Username)
	mail.To = e.To
	mail.Subject = subject
	mail.Text = []byte(message + "\n")

	addr := fmt.Sprintf("%s:%d", e.Server, port)
	auth := smtp.PlainAuth("", e.Username, e.Password, e.Server)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := mailer.Send(addr, auth, mail)
		if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
			err = mailer.Send(addr, nil, mail)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}
