package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"classflow/internal/subscription"
)

var (
	ErrAlreadyBooked           = errors.New("member already has a booking for this class")
	ErrAlreadyWaitlisted       = errors.New("member is already on the waitlist for this class")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotOnWaitlist           = errors.New("member is not on the waitlist for this class")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, class_id, member_id, subscription_id, status, created_at`

func (r *repository) BookOrWaitlist(ctx context.Context, classID, memberID int, sub *subscription.Subscription) (*BookResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	counter, err := lockClass(ctx, tx, classID)
	if err != nil {
		return nil, err
	}

	var hasBooking bool
	err = tx.GetContext(ctx, &hasBooking, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE class_id = $1 AND member_id = $2 AND status = 'confirmed'
		)
	`, classID, memberID)
	if err != nil {
		return nil, err
	}
	if hasBooking {
		return nil, ErrAlreadyBooked
	}

	var onWaitlist bool
	err = tx.GetContext(ctx, &onWaitlist, `
		SELECT EXISTS (
			SELECT 1 FROM waitlist_entries
			WHERE class_id = $1 AND member_id = $2 AND status = 'waiting'
		)
	`, classID, memberID)
	if err != nil {
		return nil, err
	}
	if onWaitlist {
		return nil, ErrAlreadyWaitlisted
	}

	err = tryReserve(ctx, tx, classID, counter)
	if errors.Is(err, ErrClassFull) {
		entry, enqueueErr := enqueue(ctx, tx, classID, memberID)
		if enqueueErr != nil {
			return nil, enqueueErr
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return nil, commitErr
		}

		return &BookResult{
			Outcome:  OutcomeWaitlisted,
			Entry:    entry,
			Position: entry.Position,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	bk, err := insertConfirmedBooking(ctx, tx, classID, memberID, sub.ID)
	if err != nil {
		return nil, err
	}

	if err := debitCredit(ctx, tx, sub.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &BookResult{
		Outcome: OutcomeConfirmed,
		Booking: bk,
	}, nil
}

func (r *repository) CancelAndPromote(ctx context.Context, bookingID int, eligible EligibilityFunc) (*CancelResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	bk := &Booking{}
	err = tx.GetContext(ctx, bk, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if bk.Status != StatusConfirmed {
		return nil, ErrBookingAlreadyCancelled
	}

	counter, err := lockClass(ctx, tx, bk.ClassID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'cancelled'
		WHERE id = $1
	`, bookingID)
	if err != nil {
		return nil, err
	}
	bk.Status = StatusCancelled

	if err := refundCredit(ctx, tx, bk.SubscriptionID); err != nil {
		return nil, err
	}

	previousEnrolled, err := release(ctx, tx, bk.ClassID, counter)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{
		Booking:   bk,
		SeatFreed: previousEnrolled >= counter.Capacity,
	}

	// A cancelled class refunds cancelling members but never fills its
	// freed seats from the waitlist.
	if result.SeatFreed && counter.Status == "active" {
		promotion, skipped, err := promoteNext(ctx, tx, bk.ClassID, eligible)
		if err != nil {
			return nil, err
		}
		result.Promoted = promotion
		result.SkippedEntries = skipped
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return result, nil
}

// promoteNext walks the waitlist in position order and converts the first
// still-eligible entry into a confirmed booking. Members whose entitlement no
// longer passes are skipped but stay waiting, keeping their position.
func promoteNext(ctx context.Context, tx *sqlx.Tx, classID int, eligible EligibilityFunc) (*Promotion, int, error) {
	skipped := 0
	afterPosition := 0

	for {
		entry, err := nextWaiting(ctx, tx, classID, afterPosition)
		if err != nil {
			return nil, skipped, err
		}
		if entry == nil {
			return nil, skipped, nil
		}
		afterPosition = entry.Position

		sub, err := activeSubscriptionTx(ctx, tx, entry.MemberID)
		if err != nil {
			return nil, skipped, err
		}
		if sub == nil || eligible(sub) != nil {
			skipped++
			continue
		}

		if err := markPromoted(ctx, tx, entry.ID); err != nil {
			return nil, skipped, err
		}
		entry.Status = WaitlistPromoted

		_, err = tx.ExecContext(ctx, `
			UPDATE class_slots
			SET enrolled = enrolled + 1
			WHERE id = $1
		`, classID)
		if err != nil {
			return nil, skipped, err
		}

		bk, err := insertConfirmedBooking(ctx, tx, classID, entry.MemberID, sub.ID)
		if err != nil {
			return nil, skipped, err
		}

		if err := debitCredit(ctx, tx, sub.ID); err != nil {
			return nil, skipped, err
		}

		return &Promotion{Entry: *entry, Booking: *bk}, skipped, nil
	}
}

func (r *repository) LeaveWaitlist(ctx context.Context, classID, memberID int) (*WaitlistEntry, error) {
	entry := &WaitlistEntry{}
	err := r.db.GetContext(ctx, entry, `
		UPDATE waitlist_entries
		SET status = 'left'
		WHERE class_id = $1 AND member_id = $2 AND status = 'waiting'
		RETURNING `+waitlistColumns,
		classID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotOnWaitlist
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *repository) PositionOf(ctx context.Context, classID, memberID int) (*WaitlistEntry, error) {
	entry := &WaitlistEntry{}
	err := r.db.GetContext(ctx, entry, `
		SELECT `+waitlistColumns+`
		FROM waitlist_entries
		WHERE class_id = $1 AND member_id = $2 AND status = 'waiting'
	`, classID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotOnWaitlist
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *repository) GetBookingByID(ctx context.Context, bookingID int) (*Booking, error) {
	bk := &Booking{}
	err := r.db.GetContext(ctx, bk, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	return bk, nil
}

func (r *repository) GetMemberBookings(ctx context.Context, memberID int, onlyUpcoming bool) ([]BookingWithDetails, error) {
	query := `
		SELECT b.id, b.class_id, b.member_id, b.subscription_id, b.status, b.created_at,
		       c.title AS class_title, c.start_time AS class_start,
		       m.name AS member_name, m.email AS member_email
		FROM bookings b
		JOIN class_slots c ON c.id = b.class_id
		JOIN members m ON m.id = b.member_id
		WHERE b.member_id = $1`
	if onlyUpcoming {
		query += ` AND b.status = 'confirmed' AND c.start_time > NOW()`
	}
	query += ` ORDER BY c.start_time ASC`

	bookings := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &bookings, query, memberID)
	return bookings, err
}

func (r *repository) GetBookingsByClass(ctx context.Context, classID int) ([]BookingWithDetails, error) {
	bookings := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT b.id, b.class_id, b.member_id, b.subscription_id, b.status, b.created_at,
		       c.title AS class_title, c.start_time AS class_start,
		       m.name AS member_name, m.email AS member_email
		FROM bookings b
		JOIN class_slots c ON c.id = b.class_id
		JOIN members m ON m.id = b.member_id
		WHERE b.class_id = $1 AND b.status = 'confirmed'
		ORDER BY b.created_at ASC
	`, classID)
	return bookings, err
}

func (r *repository) GetWaitlistByClass(ctx context.Context, classID int) ([]WaitlistEntry, error) {
	entries := []WaitlistEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT `+waitlistColumns+`
		FROM waitlist_entries
		WHERE class_id = $1 AND status = 'waiting'
		ORDER BY position ASC
	`, classID)
	return entries, err
}

func insertConfirmedBooking(ctx context.Context, tx *sqlx.Tx, classID, memberID, subscriptionID int) (*Booking, error) {
	bk := &Booking{}
	err := tx.GetContext(ctx, bk, `
		INSERT INTO bookings (class_id, member_id, subscription_id, status)
		VALUES ($1, $2, $3, 'confirmed')
		RETURNING `+bookingColumns,
		classID, memberID, subscriptionID)
	if err != nil {
		return nil, err
	}

	return bk, nil
}

// debitCredit takes one credit from a metered subscription. Unlimited plans
// have no allotment and are left untouched.
func debitCredit(ctx context.Context, tx *sqlx.Tx, subscriptionID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET remaining_credits = remaining_credits - 1,
		    updated_at = NOW()
		WHERE id = $1 AND monthly_allotment IS NOT NULL
	`, subscriptionID)
	return err
}

func refundCredit(ctx context.Context, tx *sqlx.Tx, subscriptionID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET remaining_credits = remaining_credits + 1,
		    updated_at = NOW()
		WHERE id = $1 AND monthly_allotment IS NOT NULL
	`, subscriptionID)
	return err
}

func activeSubscriptionTx(ctx context.Context, tx *sqlx.Tx, memberID int) (*subscription.Subscription, error) {
	sub := &subscription.Subscription{}
	err := tx.GetContext(ctx, sub, `
		SELECT id, member_id, category, equipment, monthly_allotment, remaining_credits, status, valid_from, valid_until, created_at, updated_at
		FROM subscriptions
		WHERE member_id = $1
		  AND status = 'active'
		  AND valid_from <= NOW()
		  AND valid_until >= NOW()
		ORDER BY valid_until DESC
		LIMIT 1
	`, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return sub, nil
}
