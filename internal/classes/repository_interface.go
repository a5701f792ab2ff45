package classes

import (
	"context"
	"time"
)

type Repository interface {
	CreateClass(ctx context.Context, title string, start time.Time, durationMin, capacity int, category Category, equipment Equipment) (*ClassSlot, error)
	GetClassByID(ctx context.Context, id int) (*ClassSlot, error)
	GetAllClasses(ctx context.Context, onlyFuture bool) ([]ClassSlot, error)
	GetClassesWithAvailability(ctx context.Context, onlyFuture bool) ([]ClassSlotWithAvailability, error)
	CancelClass(ctx context.Context, id int) error
}
