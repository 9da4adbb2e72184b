package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"

	"github.com/hermione06/cafeteria-management-system/config"
)

// Mailer sends the transactional emails the account flows need. Handlers
// treat send failures as non-fatal: the request succeeds, the error is
// logged.
type Mailer interface {
	SendVerificationEmail(to, username, token string) error
	SendPasswordResetEmail(to, username, token string) error
	SendWelcomeEmail(to, username string) error
}

type emailData struct {
	Username string
	Link     string
}

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<html><body>
<h2>Hello {{.Username}}!</h2>
<p>Thank you for registering with Cafeteria Management System.</p>
<p>Please verify your email address by opening the link below:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>This link will expire in 24 hours. If you didn't create this account, please ignore this email.</p>
</body></html>`))

	passwordResetTmpl = template.Must(template.New("password_reset").Parse(`<html><body>
<h2>Hello {{.Username}}!</h2>
<p>You requested to reset your password. Open the link below to continue:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>This link will expire in 1 hour. If you didn't request this, your password will remain unchanged.</p>
</body></html>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`<html><body>
<h2>Welcome, {{.Username}}!</h2>
<p>Your email has been verified. You can now browse the menu, place orders and track your order history.</p>
<p><a href="{{.Link}}">Go to login</a></p>
</body></html>`))
)

// SMTPMailer sends mail over plain SMTP. With no host configured it becomes
// a no-op, which is the expected mode for local development and tests.
type SMTPMailer struct {
	smtp    config.SMTPConfig
	baseURL string
	log     *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		smtp:    cfg.SMTP,
		baseURL: cfg.BaseURL,
		log:     log.With("component", "mailer"),
	}
}

func (m *SMTPMailer) SendVerificationEmail(to, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify-email/%s", m.baseURL, token)
	return m.send(to, "Verify Your Email - Cafeteria Management System", verificationTmpl, emailData{Username: username, Link: link})
}

func (m *SMTPMailer) SendPasswordResetEmail(to, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/reset-password/%s", m.baseURL, token)
	return m.send(to, "Password Reset Request - Cafeteria Management System", passwordResetTmpl, emailData{Username: username, Link: link})
}

func (m *SMTPMailer) SendWelcomeEmail(to, username string) error {
	link := fmt.Sprintf("%s/api/auth/login", m.baseURL)
	return m.send(to, "Welcome to Cafeteria Management System!", welcomeTmpl, emailData{Username: username, Link: link})
}

func (m *SMTPMailer) send(to, subject string, tmpl *template.Template, data emailData) error {
	if m.smtp.Host == "" {
		m.log.Debug("smtp not configured, skipping email", "to", to, "subject", subject)
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.smtp.From, to, subject, body.String(),
	)

	addr := fmt.Sprintf("%s:%d", m.smtp.Host, m.smtp.Port)
	auth := smtp.PlainAuth("", m.smtp.Username, m.smtp.Password, m.smtp.Host)

	if err := smtp.SendMail(addr, auth, m.smtp.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
