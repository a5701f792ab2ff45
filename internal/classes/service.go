package classes

import (
	"context"
	"errors"
)

var (
	ErrClassNotFound = errors.New("class not found")
	ErrClassInvalid  = errors.New("invalid class definition")
)

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*ClassSlot, error)
	GetClassByID(ctx context.Context, id int) (*ClassSlot, error)
	ListClasses(ctx context.Context, onlyFuture bool) ([]ClassSlotWithAvailability, error)
	CancelClass(ctx context.Context, id int) error
}

type service struct {
	repo   Repository
	policy *Policy
}

func NewService(repo Repository, policy *Policy) Service {
	return &service{
		repo:   repo,
		policy: policy,
	}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*ClassSlot, error) {
	start, err := s.policy.ParseCivil(req.StartTime)
	if err != nil {
		return nil, ErrClassInvalid
	}

	if req.Capacity < 1 || req.DurationMin <= 0 {
		return nil, ErrClassInvalid
	}

	category := Category(req.Category)
	if category == CategoryPersonal && req.Capacity > 3 {
		// Personal classes map onto solo/duo/trio plans.
		return nil, ErrClassInvalid
	}

	return s.repo.CreateClass(ctx, req.Title, start, req.DurationMin, req.Capacity, category, Equipment(req.Equipment))
}

func (s *service) GetClassByID(ctx context.Context, id int) (*ClassSlot, error) {
	slot, err := s.repo.GetClassByID(ctx, id)
	if err != nil {
		return nil, ErrClassNotFound
	}
	return slot, nil
}

func (s *service) ListClasses(ctx context.Context, onlyFuture bool) ([]ClassSlotWithAvailability, error) {
	return s.repo.GetClassesWithAvailability(ctx, onlyFuture)
}

func (s *service) CancelClass(ctx context.Context, id int) error {
	if err := s.repo.CancelClass(ctx, id); err != nil {
		if errors.Is(err, ErrClassNotFoundOrCancelled) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}
