package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const subscriptionColumns = `id, member_id, category, equipment, monthly_allotment, remaining_credits, status, valid_from, valid_until, created_at, updated_at`

func (r *repository) CreateSubscription(ctx context.Context, memberID int, category Category, equipment Equipment, allotment *int, validDays int) (*Subscription, error) {
	now := time.Now()
	validUntil := now.AddDate(0, 0, validDays)

	remaining := 0
	if allotment != nil {
		remaining = *allotment
	}

	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (member_id, category, equipment, monthly_allotment, remaining_credits, status, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, 'active', $6, $7)
		RETURNING `+subscriptionColumns,
		memberID, category, equipment, allotment, remaining, now, validUntil,
	).StructScan(sub)

	return sub, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *repository) GetActiveForMember(ctx context.Context, memberID int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE member_id = $1
		  AND status = 'active'
		  AND valid_from <= NOW()
		  AND valid_until >= NOW()
		ORDER BY valid_until DESC
		LIMIT 1
	`, memberID)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]*Subscription, error) {
	subs := []*Subscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE member_id = $1
		ORDER BY created_at DESC
	`, memberID)
	return subs, err
}

func (r *repository) Deactivate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'inactive',
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}
