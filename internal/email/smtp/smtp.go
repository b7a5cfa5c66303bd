package smtp

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"
)

type SMTP struct {
	From    string
	Host    string
	User    string
	Pass    string
	Port    int
	Timeout time.Duration
}

func New(from, host, user, pass string, port int) *SMTP {
	return &SMTP{
		From:    from,
		Host:    host,
		User:    user,
		Pass:    pass,
		Port:    port,
		Timeout: 30 * time.Second,
	}
}

func (s *SMTP) Send(subject, text, html string, recipients []string) error {
	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(recipients...); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, text)
	if html != "" {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}

	c, err := mail.NewClient(
		s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.User),
		mail.WithPassword(s.Pass),
		mail.WithTimeout(s.Timeout),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	return c.DialAndSendWithContext(ctx, m)
}
