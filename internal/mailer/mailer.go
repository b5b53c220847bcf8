// Package mailer delivers the verification and password-reset links. Delivery
// is best effort: the account service logs failures and never surfaces them
// to the caller, so a broken mail relay cannot fail a registration.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/url"
	"strings"
)

// Mailer delivers account lifecycle mail.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay, the server
// negotiating STARTTLS where offered.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
}

// NewSMTPMailer builds a mailer for the given relay. The authenticated user
// doubles as the From address. baseURL is the externally reachable root the
// emailed links point at.
func NewSMTPMailer(host, port, username, password, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     username,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// SendVerification mails the link that flips an account to verified.
func (m *SMTPMailer) SendVerification(_ context.Context, email, token string) error {
	body := "Click this link to verify your account:\r\n\r\n" + m.verificationLink(token)
	return m.send(email, "Email Verification", body)
}

// SendPasswordReset mails the link that authorizes a password overwrite.
func (m *SMTPMailer) SendPasswordReset(_ context.Context, email, token string) error {
	body := "Click this link to reset your password:\r\n\r\n" + m.resetLink(token)
	return m.send(email, "Reset Password", body)
}

func (m *SMTPMailer) verificationLink(token string) string {
	return m.baseURL + "/api/v1/auth/verify?token=" + url.QueryEscape(token)
}

func (m *SMTPMailer) resetLink(token string) string {
	return m.baseURL + "/reset-password?token=" + url.QueryEscape(token)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := net.JoinHostPort(m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes outbound mail to the structured logger instead of
// delivering it. Used in development and tests.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs the logging stub.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerification logs the verification token instead of mailing it.
func (m *LogMailer) SendVerification(_ context.Context, email, token string) error {
	if m == nil || m.logger == nil {
		return nil
	}
	m.logger.Info("verification mail", "email", email, "token", token)
	return nil
}

// SendPasswordReset logs the reset token instead of mailing it.
func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	if m == nil || m.logger == nil {
		return nil
	}
	m.logger.Info("password reset mail", "email", email, "token", token)
	return nil
}
