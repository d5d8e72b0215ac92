// Package reminder orchestrates one abandoned-cart sweep: detect eligible
// users, resolve their carts, compose and send the reminder, then record
// the send.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/urbantrend/cart-recall/internal/compose"
	"github.com/urbantrend/cart-recall/internal/model"
	"github.com/urbantrend/cart-recall/internal/repo"
	"github.com/urbantrend/cart-recall/internal/transport"
)

type Status int

const (
	StatusRecorded Status = iota
	StatusSkipped
	StatusFailed
)

// Result is the outcome of one user's dispatch. Reason is set for skips,
// Err for failures.
type Result struct {
	Status Status
	Reason string
	Err    error
}

func recorded() Result             { return Result{Status: StatusRecorded} }
func skipped(reason string) Result { return Result{Status: StatusSkipped, Reason: reason} }
func failed(err error) Result      { return Result{Status: StatusFailed, Err: err} }

type Dispatcher struct {
	users       repo.UserRepository
	catalog     repo.CatalogRepository
	sender      transport.Sender
	threshold   time.Duration
	concurrency int

	onRecorded func(ctx context.Context, userID int64, remoteMessageID string, sentAt time.Time)
}

func NewDispatcher(
	users repo.UserRepository,
	catalog repo.CatalogRepository,
	sender transport.Sender,
	threshold time.Duration,
	concurrency int,
) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Dispatcher{
		users:       users,
		catalog:     catalog,
		sender:      sender,
		threshold:   threshold,
		concurrency: concurrency,
	}
}

// WithRecordedHook registers a callback invoked after a reminder has been
// sent and recorded. Hook failures are the hook's problem; dispatch state
// is already settled when it runs.
func (d *Dispatcher) WithRecordedHook(fn func(ctx context.Context, userID int64, remoteMessageID string, sentAt time.Time)) *Dispatcher {
	d.onRecorded = fn
	return d
}

// Dispatch runs the per-user pipeline. The store write happens strictly
// after a confirmed send; a failed send leaves the user's reminder state
// untouched so the next cycle retries.
func (d *Dispatcher) Dispatch(ctx context.Context, u model.User) Result {
	if len(u.CartItemIDs) == 0 {
		return skipped("empty cart")
	}

	products, err := d.catalog.FindProductsByIDs(ctx, u.CartItemIDs)
	if err != nil {
		return failed(fmt.Errorf("resolve products: %w", err))
	}
	if len(products) == 0 {
		// Every cart item vanished from the catalog.
		return skipped("no products resolved")
	}

	text := compose.Reminder(u.Name, d.windowDays(), products)

	remoteID, err := d.sender.SendText(ctx, u.Contact, text)
	if err != nil {
		return failed(fmt.Errorf("send reminder: %w", err))
	}

	if err := d.users.RecordReminderSent(ctx, u.ID); err != nil {
		if errors.Is(err, repo.ErrAlreadyRecorded) {
			return skipped("already recorded")
		}
		return failed(fmt.Errorf("record reminder: %w", err))
	}

	if d.onRecorded != nil {
		d.onRecorded(ctx, u.ID, remoteID, time.Now().UTC())
	}

	return recorded()
}

// Cycle runs one full sweep. A detector failure aborts the cycle with no
// partial dispatch; per-user failures are isolated and only logged. Cycle
// returns after every user's dispatch has finished.
func (d *Dispatcher) Cycle(ctx context.Context) error {
	users, err := d.users.FindEligibleUsers(ctx, d.threshold)
	if err != nil {
		return fmt.Errorf("find eligible users: %w", err)
	}
	if len(users) == 0 {
		slog.Info("no users eligible for reminders")
		return nil
	}

	var recordedN, skippedN, failedN atomic.Int64

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for _, u := range users {
		u := u
		g.Go(func() error {
			res := d.Dispatch(ctx, u)
			switch res.Status {
			case StatusRecorded:
				recordedN.Add(1)
				slog.Info("reminder recorded", "user_id", u.ID, "contact", u.Contact)
			case StatusSkipped:
				skippedN.Add(1)
				slog.Info("reminder skipped", "user_id", u.ID, "reason", res.Reason)
			case StatusFailed:
				failedN.Add(1)
				slog.Error("reminder failed", "user_id", u.ID, "contact", u.Contact, "err", res.Err)
			}
			return nil
		})
	}

	_ = g.Wait()

	slog.Info("reminder cycle completed",
		"eligible", len(users),
		"recorded", recordedN.Load(),
		"skipped", skippedN.Load(),
		"failed", failedN.Load(),
	)

	return nil
}

func (d *Dispatcher) windowDays() int {
	days := int(d.threshold / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days
}
