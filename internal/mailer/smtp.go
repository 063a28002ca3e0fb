package mailer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/textproto"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

// SMTPMailer renders a template from templates/ and delivers it over SMTP. Each
// template defines "subject", "plainBody" and "htmlBody".
type SMTPMailer struct {
	dialer *mail.Dialer
	sender string
}

func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &SMTPMailer{
		dialer: dialer,
		sender: sender,
	}
}

const ticketTemplate = "booking_confirmed.tmpl"

func (m *SMTPMailer) SendTicket(recipient string, ticket Ticket) error {
	msg, err := render(m.sender, recipient, ticketTemplate, ticket)
	if err != nil {
		return fmt.Errorf("%w: render ticket %s: %w", ErrUndeliverable, ticket.BookingID, err)
	}

	for i := 1; i <= 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}

		if rejected(err) {
			return fmt.Errorf("%w: ticket %s to %s: %w", ErrUndeliverable, ticket.BookingID, recipient, err)
		}

		time.Sleep(time.Duration(i) * 500 * time.Millisecond)
	}

	return fmt.Errorf("send ticket %s to %s: %w", ticket.BookingID, recipient, err)
}

// rejected reports a permanent SMTP failure. mail.SendError does not unwrap, so its
// cause is inspected directly.
func rejected(err error) bool {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		err = sendErr.Cause
	}

	var smtpErr *textproto.Error
	return errors.As(err, &smtpErr) && smtpErr.Code >= 500
}

func render(sender, recipient, templateFile string, data any) (*mail.Message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	subject := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return nil, err
	}

	plainBody := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(plainBody, "plainBody", data)
	if err != nil {
		return nil, err
	}

	htmlBody := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	return msg, nil
}
