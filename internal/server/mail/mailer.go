// Package mail defines the outbound-notification contract consumed by the
// auth services and two senders: a real SMTP sender and a log-only sender
// for development. Delivery is best-effort; a failure here never rolls back
// an already-committed credential or session.
package mail

import "context"

// Message is a rendered outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
