package email

// Email delivers a message with plain text and HTML bodies.
type Email interface {
	Send(subject, text, html string, recipients []string) error
}
