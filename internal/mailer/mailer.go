package mailer

import (
	"context"
)

// Message is a fully composed outbound email. HTMLBody is the rendered
// invoice; Attachment, when present, is the PDF rendition.
type Message struct {
	To       string
	Subject  string
	HTMLBody string

	AttachmentName string
	Attachment     []byte
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
