package util

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ikkim/teashop-backend/pkg/logger"
)

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SendMailFunc matches smtp.SendMail so tests can capture messages.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain text mail. Without a host it runs in dev mode and only logs.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail SendMailFunc
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

// WithSendFunc swaps the transport.
func (m *SMTPMailer) WithSendFunc(fn SendMailFunc) *SMTPMailer {
	m.sendMail = fn
	return m
}

func (m *SMTPMailer) DevMode() bool {
	return m.cfg.Host == ""
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("mail recipient is empty")
	}

	if m.DevMode() {
		logger.Info("[DEV MODE] mail not sent", map[string]interface{}{
			"to":      to,
			"subject": subject,
			"body":    body,
		})
		return nil
	}

	message := BuildPlainTextMessage(m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.sendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	logger.Debug("Mail sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// BuildPlainTextMessage renders RFC 5322 headers and body with CRLF line endings.
func BuildPlainTextMessage(from, to, subject, body string) []byte {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, to, subject, body,
	))
}
