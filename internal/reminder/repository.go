package reminder

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const taskColumns = `id, member_id, class_id, fire_at, status, created_at`

func (r *repository) Reschedule(ctx context.Context, memberID, classID int, fireAt time.Time) (*Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE reminder_tasks
		SET status = 'cancelled'
		WHERE member_id = $1 AND class_id = $2 AND status = 'scheduled'
	`, memberID, classID)
	if err != nil {
		return nil, err
	}

	task := &Task{}
	err = tx.GetContext(ctx, task, `
		INSERT INTO reminder_tasks (member_id, class_id, fire_at, status)
		VALUES ($1, $2, $3, 'scheduled')
		RETURNING `+taskColumns,
		memberID, classID, fireAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *repository) CancelPending(ctx context.Context, memberID, classID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reminder_tasks
		SET status = 'cancelled'
		WHERE member_id = $1 AND class_id = $2 AND status = 'scheduled'
	`, memberID, classID)
	return err
}

func (r *repository) MemberLead(ctx context.Context, memberID int) (time.Duration, error) {
	var minutes int
	err := r.db.GetContext(ctx, &minutes, `
		SELECT reminder_lead_minutes FROM members WHERE id = $1
	`, memberID)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

func (r *repository) DueTasks(ctx context.Context, now time.Time, limit int) ([]DueTask, error) {
	tasks := []DueTask{}
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT t.id, t.member_id, t.class_id, t.fire_at, t.status, t.created_at,
		       m.name AS member_name, m.email AS member_email,
		       c.title AS class_title, c.start_time AS class_start
		FROM reminder_tasks t
		JOIN members m ON m.id = t.member_id
		JOIN class_slots c ON c.id = t.class_id
		WHERE t.status = 'scheduled' AND t.fire_at <= $1
		ORDER BY t.fire_at ASC
		LIMIT $2
	`, now, limit)
	return tasks, err
}

func (r *repository) MarkFired(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reminder_tasks
		SET status = 'fired'
		WHERE id = $1 AND status = 'scheduled'
	`, id)
	return err
}
