package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

type senderStub struct {
	sent []*mail.Msg
	err  error
}

func (s *senderStub) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

func publishedNotification() models.Notification {
	return models.Notification{
		ID:         "n-1",
		EmployeeID: "emp-a",
		Email:      "alya@example.com",
		FullName:   "Alya Putri",
		Type:       models.NotificationTypeSchedulePublished,
		Title:      "Your schedule has been published",
		Message:    "You have 3 new shifts.",
		Meta:       map[string]string{"first_date": "2024-03-04", "last_date": "2024-03-08"},
	}
}

func TestMailerCompose(t *testing.T) {
	m := NewMailer(&senderStub{}, "scheduler@example.com", nil)

	msg, err := m.Compose(publishedNotification())
	require.NoError(t, err)

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"alya@example.com"}, recipients)
	assert.Equal(t, []string{"Your schedule has been published"}, msg.GetGenHeader(mail.HeaderSubject))
}

func TestMailerComposeRequiresEmail(t *testing.T) {
	m := NewMailer(&senderStub{}, "scheduler@example.com", nil)
	note := publishedNotification()
	note.Email = ""

	_, err := m.Compose(note)
	assert.Error(t, err)
}

func TestMessageBody(t *testing.T) {
	body := messageBody(publishedNotification())
	assert.Equal(t, "Hello Alya Putri,\n\nYou have 3 new shifts.\n\nFirst shift: 2024-03-04\nLast shift: 2024-03-08\n", body)

	anonymous := publishedNotification()
	anonymous.FullName = ""
	anonymous.Meta = nil
	assert.Equal(t, "Hello there,\n\nYou have 3 new shifts.\n", messageBody(anonymous))
}

func TestMailerDeliver(t *testing.T) {
	body, err := json.Marshal(publishedNotification())
	require.NoError(t, err)

	t.Run("sends", func(t *testing.T) {
		sender := &senderStub{}
		m := NewMailer(sender, "scheduler@example.com", nil)
		require.NoError(t, m.Deliver(context.Background(), body))
		assert.Len(t, sender.sent, 1)
	})

	t.Run("malformed body is permanent", func(t *testing.T) {
		m := NewMailer(&senderStub{}, "scheduler@example.com", nil)
		err := m.Deliver(context.Background(), []byte("{"))
		assert.True(t, errors.Is(err, ErrUndeliverable))
	})

	t.Run("missing address is permanent", func(t *testing.T) {
		note := publishedNotification()
		note.Email = ""
		raw, err := json.Marshal(note)
		require.NoError(t, err)

		m := NewMailer(&senderStub{}, "scheduler@example.com", nil)
		err = m.Deliver(context.Background(), raw)
		assert.True(t, errors.Is(err, ErrUndeliverable))
	})

	t.Run("send failure is transient", func(t *testing.T) {
		sender := &senderStub{err: errors.New("smtp down")}
		m := NewMailer(sender, "scheduler@example.com", nil)
		err := m.Deliver(context.Background(), body)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUndeliverable))
	})
}
