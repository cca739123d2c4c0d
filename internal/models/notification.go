package models

import "time"

// NotificationTypeSchedulePublished is sent once per employee after a commit.
const NotificationTypeSchedulePublished = "schedule_published"

// Notification is the message handed to the notification transport.
type Notification struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employee_id"`
	Email      string            `json:"email,omitempty"`
	FullName   string            `json:"full_name,omitempty"`
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Meta       map[string]string `json:"meta,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
