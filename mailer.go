package users

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/goliatone/go-errors"
)

const newPasswordSubject = "Get Array, LLC - New Password"

// SMTPConfig holds the connection settings for the outgoing mail server.
type SMTPConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
}

// Addr returns the host:port dial address.
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPMailer delivers account emails over plain SMTP with AUTH PLAIN.
type SMTPMailer struct {
	config SMTPConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger Logger
}

// NewSMTPMailer will create a new SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger Logger) *SMTPMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &SMTPMailer{
		config: config,
		send:   smtp.SendMail,
		logger: logger,
	}
}

// WithSender overrides the SMTP send function.
func (m *SMTPMailer) WithSender(send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) *SMTPMailer {
	if send != nil {
		m.send = send
	}
	return m
}

// SendNewPassword emails a freshly generated password to a new or reset
// account. The password travels in cleartext, which is why generated
// passwords are temporary.
func (m *SMTPMailer) SendNewPassword(ctx context.Context, firstName, password, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := fmt.Sprintf("Hello %s, \n \nYour new account password is: %s \n \nThe Support Team", firstName, password)
	msg := buildMessage(m.config.From, email, newPasswordSubject, body)

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	if err := m.send(m.config.Addr(), auth, m.config.From, []string{email}, msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to send new password email")
	}

	m.logger.Info("sent new password email to: %s", email)

	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

var _ Mailer = (*SMTPMailer)(nil)

// NoopMailer drops every email. Useful for development and tests.
type NoopMailer struct {
	Logger Logger
}

// SendNewPassword logs and discards the email.
func (m NoopMailer) SendNewPassword(ctx context.Context, firstName, password, email string) error {
	if m.Logger != nil {
		m.Logger.Debug("noop mailer dropping new password email for: %s", email)
	}
	return nil
}

var _ Mailer = NoopMailer{}
