package email

import (
	"fmt"
	"net/smtp"
)

// Sender delivers the two outbound mails the auth flows produce. Handlers
// depend on this interface so tests can capture tokens instead of talking
// to an SMTP server.
type Sender interface {
	SendConfirmation(to, username, token string) error
	SendPasswordReset(to, username, token string) error
}

// SMTPSender sends plain-text mail over a single SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
}

func NewSMTPSender(host, port, username, password, from, baseURL string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		baseURL:  baseURL,
	}
}

func (s *SMTPSender) SendConfirmation(to, username, token string) error {
	link := fmt.Sprintf("%s/auth/confirm/%s", s.baseURL, token)
	msg := fmt.Sprintf("Subject: Confirm your email\n\nHi %s,\n\nConfirm your email: %s\n", username, link)
	return s.send(to, msg)
}

func (s *SMTPSender) SendPasswordReset(to, username, token string) error {
	link := fmt.Sprintf("%s/auth/password_reset_confirm/%s", s.baseURL, token)
	msg := fmt.Sprintf("Subject: Password reset\n\nHi %s,\n\nReset your password: %s\n", username, link)
	return s.send(to, msg)
}

func (s *SMTPSender) send(to, msg string) error {
	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg))
}
