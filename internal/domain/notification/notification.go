package notification

import (
	"fmt"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain"
)

var ErrNotFound = fmt.Errorf("notification %w", domain.ErrNotFound)

type Kind string

const (
	KindReminder  Kind = "reminder"
	KindBroadcast Kind = "broadcast"
)

const MaxMessageLen = 500

type ActivityRef struct {
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"startDate"`
}

type Notification struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"userId"`
	ActivityID *int64       `json:"activityId,omitempty"`
	Message    string       `json:"message"`
	Seen       bool         `json:"seen"`
	Kind       Kind         `json:"kind"`
	CreatedAt  time.Time    `json:"createdAt"`
	Activity   *ActivityRef `json:"activity,omitempty"`

	// ReminderDay is the calendar day a reminder belongs to, as YYYY-MM-DD.
	// Unique together with UserID and ActivityID.
	ReminderDay string `json:"-"`
}

// ReminderMessage is the text of an automatic same-day reminder.
func ReminderMessage(title, activityType string) string {
	return fmt.Sprintf("Reminder: %q (%s) is scheduled for today.", title, activityType)
}

type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

type MarkSeenRequest struct {
	ID int64 `json:"id" binding:"required,min=1"`
}
