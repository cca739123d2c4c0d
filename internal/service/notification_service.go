package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/pkg/jobs"
)

const notificationJobType = "schedule_notification"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type notificationPublisher interface {
	Publish(ctx context.Context, notification models.Notification) error
}

// NotificationService hands notifications to the background queue so commit
// latency never depends on the transport.
type NotificationService struct {
	queue  jobDispatcher
	logger *zap.Logger
}

// NewNotificationService constructs the dispatcher.
func NewNotificationService(queue jobDispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, logger: logger}
}

// Notify enqueues a notification for asynchronous delivery.
func (s *NotificationService) Notify(ctx context.Context, notification models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: notificationJobType, Payload: notification}); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", notification.ID, err)
	}
	s.logger.Debug("notification queued", zap.String("employee_id", notification.EmployeeID), zap.String("type", notification.Type))
	return nil
}

// NotificationWorker publishes queued notifications to the transport.
type NotificationWorker struct {
	publisher notificationPublisher
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationWorker constructs a worker.
func NewNotificationWorker(publisher notificationPublisher, metrics *MetricsService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{publisher: publisher, metrics: metrics, logger: logger}
}

// Handle processes a queue job. Returning an error lets the queue retry it.
func (w *NotificationWorker) Handle(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		w.metrics.RecordNotification("invalid")
		w.logger.Sugar().Warnw("dropping notification job with unexpected payload", "job_id", job.ID, "type", job.Type)
		return nil
	}
	if err := w.publisher.Publish(ctx, notification); err != nil {
		w.metrics.RecordNotification("failed")
		return err
	}
	w.metrics.RecordNotification("sent")
	return nil
}
