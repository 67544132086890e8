// Package notify delivers one-time verification codes to users. The rest of
// the application only sees the Sender interface; delivery may go out
// directly over SMTP or as an event on a mail topic consumed elsewhere.
package notify

import (
	"context"
	"log"

	"fundhub/internal/domain"
)

// Purpose distinguishes the two code-bearing mails.
type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "password-reset"
)

// Sender dispatches a verification code to a recipient.
type Sender interface {
	SendCode(ctx context.Context, email, code, fullName string, role domain.Role, purpose Purpose) error
}

// LogSender writes codes to the server log instead of delivering them.
// Default in development so the flows work without mail infrastructure.
type LogSender struct{}

func (LogSender) SendCode(_ context.Context, email, code, _ string, _ domain.Role, purpose Purpose) error {
	log.Printf("notify: %s code %s for %s (log driver, not delivered)", purpose, code, email)
	return nil
}
