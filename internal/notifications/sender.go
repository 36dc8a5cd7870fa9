package notifications

import (
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender sends one email. The deliver worker only talks to this
// interface; tests inject a recording fake.
type EmailSender interface {
	Send(req SendEmailRequest) error
}

// SMTPSender delivers email through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port of the relay
}

// Send renders the request as a MIME message and submits it to the relay.
func (s *SMTPSender) Send(req SendEmailRequest) error {
	if s.Addr == "" {
		return fmt.Errorf("smtp sender not configured")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", req.FromAddress)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(req.Destination.ToAddresses, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", req.Message.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(req.Message.HTMLBody)

	return smtp.SendMail(s.Addr, nil, req.FromAddress, req.Destination.ToAddresses, []byte(b.String()))
}
