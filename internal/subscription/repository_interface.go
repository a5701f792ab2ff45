package subscription

import "context"

type Repository interface {
	CreateSubscription(ctx context.Context, memberID int, category Category, equipment Equipment, allotment *int, validDays int) (*Subscription, error)
	GetByID(ctx context.Context, id int) (*Subscription, error)
	GetActiveForMember(ctx context.Context, memberID int) (*Subscription, error)
	ListByMember(ctx context.Context, memberID int) ([]*Subscription, error)
	Deactivate(ctx context.Context, id int) error
}
