// Package mail is the outgoing notification boundary. Senders must treat
// delivery as best-effort: a failed send never aborts the operation that
// triggered it.
package mail

import "context"

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
