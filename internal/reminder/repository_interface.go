package reminder

import (
	"context"
	"time"
)

type Repository interface {
	// Reschedule replaces any scheduled reminder for the member and class
	// with a single new one, keeping at most one scheduled task per pair.
	Reschedule(ctx context.Context, memberID, classID int, fireAt time.Time) (*Task, error)

	// CancelPending cancels the scheduled reminder for the member and
	// class, if any. Cancelling when none exists is not an error.
	CancelPending(ctx context.Context, memberID, classID int) error

	// MemberLead returns how long before class start the member wants
	// their reminder.
	MemberLead(ctx context.Context, memberID int) (time.Duration, error)

	DueTasks(ctx context.Context, now time.Time, limit int) ([]DueTask, error)
	MarkFired(ctx context.Context, id int) error
}
