package model

import "time"

// ReminderPolicy selects how a dispatched reminder is recorded per user.
type ReminderPolicy string

const (
	// PolicyFlag marks the user once; a reminded user is permanently
	// excluded from later cycles.
	PolicyFlag ReminderPolicy = "flag"

	// PolicyCounter increments a per-user counter; the user becomes
	// eligible again after the configured cooldown elapses.
	PolicyCounter ReminderPolicy = "counter"
)

// User is a row of the users table. Contact is the messaging address,
// unique per user, and is the join key for inbound messages.
type User struct {
	ID             int64
	Name           string
	Contact        string
	LastSeen       time.Time
	CartItemIDs    []int64
	Reminded       bool
	ReminderCount  int
	LastRemindedAt *time.Time
}
