package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Waitlist positions are assigned at enqueue time from MAX(position)+1 over
// every entry the class has ever had, so a position is never reused even
// after entries leave or get promoted. Promotion order is position order.

const waitlistColumns = `id, class_id, member_id, position, status, created_at`

func enqueue(ctx context.Context, tx *sqlx.Tx, classID, memberID int) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := tx.GetContext(ctx, &entry, `
		INSERT INTO waitlist_entries (class_id, member_id, position, status)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist_entries WHERE class_id = $1), 'waiting')
		RETURNING `+waitlistColumns,
		classID, memberID)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// nextWaiting returns the head of the queue after the given position, or nil
// when the queue is exhausted. The caller must hold the class lock.
func nextWaiting(ctx context.Context, tx *sqlx.Tx, classID, afterPosition int) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := tx.GetContext(ctx, &entry, `
		SELECT `+waitlistColumns+`
		FROM waitlist_entries
		WHERE class_id = $1 AND status = 'waiting' AND position > $2
		ORDER BY position ASC
		LIMIT 1
	`, classID, afterPosition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func markPromoted(ctx context.Context, tx *sqlx.Tx, entryID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE waitlist_entries
		SET status = 'promoted'
		WHERE id = $1 AND status = 'waiting'
	`, entryID)
	return err
}
