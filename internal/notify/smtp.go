package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"fundhub/internal/domain"
)

const codeTemplate = `
<!DOCTYPE html>
<html>
<body style="margin: 0; padding: 0; background-color: #f4f4f7; font-family: Arial, sans-serif;">
  <div style="max-width: 600px; margin: 0 auto; padding: 30px; background-color: #ffffff; border-radius: 8px;">
    <h2 style="color: #333333;">Hello {{.FullName}},</h2>
    <p style="color: #666666; font-size: 16px;">{{.Intro}}</p>
    <div style="text-align: center; padding: 20px; background-color: #f8f9fa; border-radius: 8px;">
      <span style="font-size: 36px; font-weight: bold; letter-spacing: 8px; font-family: monospace;">{{.Code}}</span>
    </div>
    <p style="color: #999999; font-size: 14px; text-align: center;">This code will expire shortly. If you didn't request it, you can safely ignore this email.</p>
  </div>
</body>
</html>
`

// SMTPSender delivers verification codes directly over SMTP.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	tmpl     *template.Template
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		tmpl:     template.Must(template.New("code").Parse(codeTemplate)),
	}
}

func (s *SMTPSender) SendCode(_ context.Context, email, code, fullName string, role domain.Role, purpose Purpose) error {
	subject := "Verify Your Email - FundHub"
	intro := "Please use the verification code below to complete your registration."
	if purpose == PurposeReset {
		subject = "Password Reset Request - FundHub"
		intro = "We received a request to reset your password. Use the code below to proceed."
	} else if role == domain.RoleOwner {
		intro = "Welcome to our startup ecosystem! Use the code below to verify your email and launch your campaign."
	}

	var body bytes.Buffer
	err := s.tmpl.Execute(&body, map[string]string{
		"FullName": fullName,
		"Intro":    intro,
		"Code":     code,
	})
	if err != nil {
		return fmt.Errorf("render mail template: %w", err)
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", email),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}, "\r\n")

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", email, err)
	}
	return nil
}
