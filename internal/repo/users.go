package repo

import (
	"context"
	"errors"
	"time"

	"github.com/urbantrend/cart-recall/internal/model"
)

// ErrAlreadyRecorded is returned by RecordReminderSent when the conditional
// update matched no row: another cycle recorded the reminder first, or the
// user is inside the cooldown. Callers treat it as a skip, not a failure.
var ErrAlreadyRecorded = errors.New("reminder already recorded")

type UserRepository interface {
	// FindEligibleUsers returns users idle longer than threshold whose
	// reminder state still allows a reminder under the configured policy.
	// An empty result is not an error.
	FindEligibleUsers(ctx context.Context, threshold time.Duration) ([]model.User, error)

	// UpdateLastSeen stamps the user identified by contact. Affecting
	// zero rows (unknown contact) is not an error.
	UpdateLastSeen(ctx context.Context, contact string) error

	// RecordReminderSent advances the user's reminder state with a single
	// conditional update. Returns ErrAlreadyRecorded when the state had
	// already advanced.
	RecordReminderSent(ctx context.Context, userID int64) error

	ListUsers(ctx context.Context) ([]model.User, error)
}
