package cache

import (
	"context"
	"time"
)

// ReminderLog records dispatched reminders for operator visibility.
type ReminderLog interface {
	StoreReminder(ctx context.Context, userID int64, remoteMessageID string, sentAt time.Time) error
}
