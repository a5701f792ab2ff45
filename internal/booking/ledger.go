package booking

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrClassFull never reaches the API surface: the service diverts it
	// into a waitlist outcome.
	ErrClassFull      = errors.New("class is full")
	ErrClassNotActive = errors.New("class is not active")
)

// The capacity ledger arbitrates the enrolled-vs-capacity counter on the
// class row. Locking the row with SELECT ... FOR UPDATE serialises every
// capacity- and waitlist-affecting operation for one class; operations on
// different classes proceed in parallel. Two concurrent reservations for the
// last seat therefore cannot both succeed.

type classCounter struct {
	Capacity int    `db:"capacity"`
	Enrolled int    `db:"enrolled"`
	Status   string `db:"status"`
}

// lockClass acquires the per-class exclusive lock for the remainder of the
// transaction and returns the current counter.
func lockClass(ctx context.Context, tx *sqlx.Tx, classID int) (classCounter, error) {
	var c classCounter
	err := tx.GetContext(ctx, &c, `
		SELECT capacity, enrolled, status
		FROM class_slots
		WHERE id = $1
		FOR UPDATE
	`, classID)
	return c, err
}

// tryReserve claims one seat. The caller must hold the class lock.
func tryReserve(ctx context.Context, tx *sqlx.Tx, classID int, c classCounter) error {
	if c.Status != "active" {
		return ErrClassNotActive
	}
	if c.Enrolled >= c.Capacity {
		return ErrClassFull
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE class_slots
		SET enrolled = enrolled + 1
		WHERE id = $1
	`, classID)
	return err
}

// release frees one seat and reports the enrolled count before the release,
// so the caller can tell whether the class had been full.
func release(ctx context.Context, tx *sqlx.Tx, classID int, c classCounter) (previousEnrolled int, err error) {
	_, err = tx.ExecContext(ctx, `
		UPDATE class_slots
		SET enrolled = enrolled - 1
		WHERE id = $1 AND enrolled > 0
	`, classID)
	return c.Enrolled, err
}
