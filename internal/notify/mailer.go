package notify

import (
	"fmt"
	"net/smtp"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
)

// Mailer sends plain text email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail over SMTP. With no host or credentials
// configured it runs in dev mode: messages are logged, not sent.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) devMode() bool {
	return m.cfg.Host == "" || m.cfg.Username == "" || m.cfg.Password == ""
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.devMode() {
		logger.Info("[DEV MODE] Email not sent", map[string]interface{}{
			"to":      to,
			"subject": subject,
			"body":    body,
		})
		return nil
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.cfg.From, to, subject, body,
	))

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}
