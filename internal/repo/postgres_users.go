package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urbantrend/cart-recall/internal/model"
)

type PostgresUserRepo struct {
	pool     *pgxpool.Pool
	policy   model.ReminderPolicy
	cooldown time.Duration
}

func NewPostgresUserRepo(pool *pgxpool.Pool, policy model.ReminderPolicy, cooldown time.Duration) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool, policy: policy, cooldown: cooldown}
}

var _ UserRepository = (*PostgresUserRepo)(nil)

func (r *PostgresUserRepo) FindEligibleUsers(ctx context.Context, threshold time.Duration) ([]model.User, error) {
	idleCutoff := time.Now().UTC().Add(-threshold)

	var (
		query string
		args  []any
	)

	switch r.policy {
	case model.PolicyCounter:
		// Under the counter policy a user becomes eligible again once
		// the cooldown since the previous reminder has elapsed.
		remindCutoff := time.Now().UTC().Add(-r.cooldown)
		query = `
			SELECT id, name, phone, cart_items
			FROM users
			WHERE last_seen <= $1
			  AND (last_reminded_at IS NULL OR last_reminded_at <= $2)
			ORDER BY id
		`
		args = []any{idleCutoff, remindCutoff}
	default:
		query = `
			SELECT id, name, phone, cart_items
			FROM users
			WHERE last_seen <= $1
			  AND cart_reminded = FALSE
			ORDER BY id
		`
		args = []any{idleCutoff}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find eligible users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u        model.User
			rawItems *string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Contact, &rawItems); err != nil {
			return nil, fmt.Errorf("scan eligible user: %w", err)
		}
		if rawItems != nil {
			u.CartItemIDs = model.ParseCartItems(*rawItems)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eligible users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) UpdateLastSeen(ctx context.Context, contact string) error {
	// Zero rows affected means the contact is not a known user, which is
	// fine for inbound traffic.
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET last_seen = now()
		WHERE phone = $1
	`, contact)
	if err != nil {
		return fmt.Errorf("update last seen: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) RecordReminderSent(ctx context.Context, userID int64) error {
	// The WHERE clause re-checks the eligibility predicate, making the
	// state transition a single atomic conditional update. Overlapping
	// cycles cannot both record the same reminder.
	switch r.policy {
	case model.PolicyCounter:
		remindCutoff := time.Now().UTC().Add(-r.cooldown)
		tag, err := r.pool.Exec(ctx, `
			UPDATE users
			SET reminder_count = reminder_count + 1,
			    last_reminded_at = now()
			WHERE id = $1
			  AND (last_reminded_at IS NULL OR last_reminded_at <= $2)
		`, userID, remindCutoff)
		if err != nil {
			return fmt.Errorf("record reminder: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyRecorded
		}
		return nil
	default:
		tag, err := r.pool.Exec(ctx, `
			UPDATE users
			SET cart_reminded = TRUE,
			    reminder_count = reminder_count + 1,
			    last_reminded_at = now()
			WHERE id = $1
			  AND cart_reminded = FALSE
		`, userID)
		if err != nil {
			return fmt.Errorf("record reminder: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyRecorded
		}
		return nil
	}
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, cart_reminded, reminder_count
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Contact, &u.Reminded, &u.ReminderCount); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
