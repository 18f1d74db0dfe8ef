package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"

	"github.com/fibrewavelabs/fibrewave/internal/config"
	"go.uber.org/zap"
)

// SMTPMailer delivers mail over plain SMTP with AUTH when credentials are
// configured. No mail library in the stack covers multipart composition, so
// the MIME envelope is assembled by hand.
type SMTPMailer struct {
	cfg config.SMTPConfig
	log *zap.Logger
}

func NewSMTP(cfg config.Config, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg.SMTP, log: log.Named("mailer.smtp")}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("smtp: empty recipient")
	}

	body := composeMIME(m.cfg.From, msg)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	// net/smtp has no context support; honor cancellation before the dial at
	// least, the worker bounds the whole attempt with a deadline anyway.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", msg.To, err)
	}

	m.log.Debug("mail delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

const mixedBoundary = "fibrewave-mixed-b0undary"

func composeMIME(from string, msg Message) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachment) == 0 {
		buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.HTMLBody)
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixedBoundary)

	fmt.Fprintf(&buf, "--%s\r\n", mixedBoundary)
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	buf.WriteString(msg.HTMLBody)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", mixedBoundary)
	fmt.Fprintf(&buf, "Content-Type: application/pdf; name=%q\r\n", msg.AttachmentName)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", msg.AttachmentName)

	encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", mixedBoundary)
	return buf.Bytes()
}
