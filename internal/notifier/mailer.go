package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// ErrUndeliverable marks messages that will never succeed and must not be requeued.
var ErrUndeliverable = errors.New("notification undeliverable")

// Sender is the subset of *mail.Client used for delivery.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer turns queued notifications into e-mail.
type Mailer struct {
	sender Sender
	from   string
	logger *zap.Logger
}

// NewMailer constructs a mailer sending as from.
func NewMailer(sender Sender, from string, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{sender: sender, from: from, logger: logger}
}

// Deliver decodes a queue message body and mails it. Errors wrapping
// ErrUndeliverable are permanent; anything else may succeed on retry.
func (m *Mailer) Deliver(ctx context.Context, body []byte) error {
	notification, err := Decode(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	msg, err := m.Compose(notification)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification %s: %w", notification.ID, err)
	}
	m.logger.Info("notification mailed", zap.String("notification_id", notification.ID), zap.String("employee_id", notification.EmployeeID))
	return nil
}

// Compose builds the plain-text message for a notification.
func (m *Mailer) Compose(notification models.Notification) (*mail.Msg, error) {
	if notification.Email == "" {
		return nil, fmt.Errorf("employee %s has no e-mail address", notification.EmployeeID)
	}
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if notification.FullName != "" {
		if err := msg.AddToFormat(notification.FullName, notification.Email); err != nil {
			return nil, fmt.Errorf("set recipient: %w", err)
		}
	} else if err := msg.To(notification.Email); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(notification.Title)
	msg.SetBodyString(mail.TypeTextPlain, messageBody(notification))
	return msg, nil
}

func messageBody(n models.Notification) string {
	var b strings.Builder
	name := n.FullName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n", name, n.Message)
	if first, last := n.Meta["first_date"], n.Meta["last_date"]; first != "" && last != "" {
		fmt.Fprintf(&b, "\nFirst shift: %s\nLast shift: %s\n", first, last)
	}
	return b.String()
}
