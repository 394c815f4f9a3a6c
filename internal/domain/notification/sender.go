package notification

import "context"

// Attachment is an encoded file sent with an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email is an outbound message.
type Email struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// EmailSender is the outbound port to the mail transport. It returns the
// transport's message id.
type EmailSender interface {
	Send(ctx context.Context, email Email) (string, error)
}
