package reminder

import "time"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusFired     Status = "fired"
	StatusCancelled Status = "cancelled"
)

type Task struct {
	ID        int       `db:"id" json:"id"`
	MemberID  int       `db:"member_id" json:"member_id"`
	ClassID   int       `db:"class_id" json:"class_id"`
	FireAt    time.Time `db:"fire_at" json:"fire_at"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DueTask is a scheduled task joined with the details the notification
// needs.
type DueTask struct {
	Task
	MemberName  string    `db:"member_name"`
	MemberEmail string    `db:"member_email"`
	ClassTitle  string    `db:"class_title"`
	ClassStart  time.Time `db:"class_start"`
}
