package notifications

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/you/erpauth/domain"
	"go.uber.org/zap"
)

// SMTPMailer implements domain.MailSender over plain SMTP with STARTTLS
// negotiated by net/smtp when the server offers it.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *zap.Logger

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer. An empty host turns delivery into a log line.
func NewSMTPMailer(host string, port int, username, password, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// SendMail implements domain.MailSender
func (m *SMTPMailer) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	if m.host == "" {
		m.logger.Info("mail delivery disabled, logging message",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, auth, m.from, []string{to}, buildMessage(m.from, to, subject, htmlBody)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

var _ domain.MailSender = (*SMTPMailer)(nil)
