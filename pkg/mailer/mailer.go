package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers messages. Implementations do not retry.
type Sender interface {
	// Send returns the provider's message id, which may be empty.
	Send(ctx context.Context, msg Message) (string, error)
	// Provider names the backend in logs and metrics.
	Provider() string
}
