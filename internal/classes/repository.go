package classes

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrClassNotFoundOrCancelled = errors.New("class not found or already cancelled")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateClass(ctx context.Context, title string, start time.Time, durationMin, capacity int, category Category, equipment Equipment) (*ClassSlot, error) {
	query := `
		INSERT INTO class_slots (title, start_time, duration_min, capacity, enrolled, category, equipment, status)
		VALUES ($1, $2, $3, $4, 0, $5, $6, 'active')
		RETURNING id, title, start_time, duration_min, capacity, enrolled, category, equipment, status, created_at
	`

	var slot ClassSlot
	err := r.db.GetContext(ctx, &slot, query, title, start, durationMin, capacity, category, equipment)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetClassByID(ctx context.Context, id int) (*ClassSlot, error) {
	query := `
		SELECT id, title, start_time, duration_min, capacity, enrolled, category, equipment, status, created_at
		FROM class_slots
		WHERE id = $1
	`

	var slot ClassSlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetAllClasses(ctx context.Context, onlyFuture bool) ([]ClassSlot, error) {
	query := `
		SELECT id, title, start_time, duration_min, capacity, enrolled, category, equipment, status, created_at
		FROM class_slots
		WHERE status = 'active'
	`

	if onlyFuture {
		query += " AND start_time > NOW()"
	}

	query += " ORDER BY start_time ASC"

	var slots []ClassSlot
	err := r.db.SelectContext(ctx, &slots, query)
	if err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) GetClassesWithAvailability(ctx context.Context, onlyFuture bool) ([]ClassSlotWithAvailability, error) {
	query := `
		SELECT
			c.id, c.title, c.start_time, c.duration_min, c.capacity, c.enrolled,
			c.category, c.equipment, c.status, c.created_at,
			(SELECT COUNT(*) FROM waitlist_entries w WHERE w.class_id = c.id AND w.status = 'waiting') AS waitlist_length
		FROM class_slots c
		WHERE c.status = 'active'
	`

	if onlyFuture {
		query += " AND c.start_time > NOW()"
	}

	query += " ORDER BY c.start_time ASC"

	type row struct {
		ClassSlot
		WaitlistLength int `db:"waitlist_length"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	result := make([]ClassSlotWithAvailability, 0, len(rows))
	for _, rw := range rows {
		available := rw.Capacity - rw.Enrolled
		result = append(result, ClassSlotWithAvailability{
			ClassSlot:      rw.ClassSlot,
			Available:      available,
			IsFull:         available <= 0,
			WaitlistLength: rw.WaitlistLength,
		})
	}

	return result, nil
}

func (r *repository) CancelClass(ctx context.Context, id int) error {
	query := `
		UPDATE class_slots
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrClassNotFoundOrCancelled
	}

	return nil
}
