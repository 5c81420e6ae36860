package domain

import "context"

// Email is a single outbound HTML message.
type Email struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	HTML    string
}

// EmailSender defines the interface for sending emails. This allows for
// different implementations (e.g., for logging, Resend, SMTP).
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}
