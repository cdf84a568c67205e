package domain

import "time"

// Notification types emitted by the account flows.
const (
	NotificationAccount = "account_notification"
)

// Notification is one row per target user. A multi-target notification is
// fanned out into one record per user id at creation time.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Content        string    `json:"content" dynamodbav:"content"`
	Type           string    `json:"type" dynamodbav:"type"`
	CanDelete      bool      `json:"can_delete" dynamodbav:"can_delete"`
	CanMarkAsRead  bool      `json:"can_mark_as_read" dynamodbav:"can_mark_as_read"`
	IsRead         bool      `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// CreateNotificationInput is the side-channel payload accepted from the
// account flows: title, content, type and the target user ids.
type CreateNotificationInput struct {
	Title     string
	Content   string
	Type      string
	TargetIDs []string
}
