package providers

import (
	"context"
	"fmt"
	"net/smtp"

	"notification-center/internal/config"
	"notification-center/internal/models"
)

// Email delivers notifications over SMTP.
type Email struct {
	cfg config.Config
}

func NewEmail(cfg config.Config) *Email {
	return &Email{cfg: cfg}
}

func (e *Email) Send(_ context.Context, n models.Notification, address string) error {
	smtpServer := e.cfg.Email.SMTPServer
	smtpPort := e.cfg.Email.SMTPPort
	username := e.cfg.Email.Username
	password := e.cfg.Email.Password

	if smtpServer == "" || smtpPort == 0 || username == "" || password == "" {
		return fmt.Errorf("missing Email configuration: SMTPServer, SMTPPort, Username, or Password is empty")
	}
	if address == "" {
		return fmt.Errorf("no email address for recipient %d", n.RecipientID)
	}

	from := username
	if e.cfg.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.cfg.Email.FromName, username)
	}
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, address, n.Title, n.Message)

	auth := smtp.PlainAuth("", username, password, smtpServer)
	addr := fmt.Sprintf("%s:%d", smtpServer, smtpPort)
	if err := smtp.SendMail(addr, auth, username, []string{address}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", address, err)
	}
	return nil
}
