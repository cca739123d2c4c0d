package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes notifications as persistent JSON messages on a queue.
type AMQPNotifier struct {
	channel Channel
	queue   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewAMQPNotifier constructs a publisher for queue.
func NewAMQPNotifier(channel Channel, queue string, timeout time.Duration, logger *zap.Logger) *AMQPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AMQPNotifier{channel: channel, queue: queue, timeout: timeout, logger: logger}
}

// DeclareQueue declares the durable queue shared by publisher and consumer.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", name, err)
	}
	return q, nil
}

// Publish sends a single notification.
func (n *AMQPNotifier) Publish(ctx context.Context, notification models.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.channel.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    notification.ID,
		Type:         notification.Type,
		Timestamp:    notification.CreatedAt,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish notification %s: %w", notification.ID, err)
	}
	n.logger.Debug("notification published", zap.String("queue", n.queue), zap.String("employee_id", notification.EmployeeID))
	return nil
}

// Decode parses a delivered message body.
func Decode(body []byte) (models.Notification, error) {
	var notification models.Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		return models.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	if notification.EmployeeID == "" {
		return models.Notification{}, fmt.Errorf("notification %s has no employee", notification.ID)
	}
	return notification, nil
}
