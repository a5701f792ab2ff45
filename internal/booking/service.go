package booking

import (
	"context"
	"database/sql"
	"errors"

	"classflow/internal/classes"
	"classflow/internal/entitlement"
	"classflow/internal/logger"
	"classflow/internal/metrics"
	"classflow/internal/subscription"
)

var (
	ErrNoActiveSubscription = errors.New("member has no active subscription")
	ErrNotYourBooking       = errors.New("booking belongs to another member")
)

type Service interface {
	// Book resolves a booking request to a confirmed seat or a waitlist
	// spot. The member must hold an active subscription whose entitlement
	// covers the class, and the class must still be inside the booking
	// window.
	Book(ctx context.Context, classID, memberID int) (*BookResult, error)

	// Cancel cancels the member's confirmed booking, refunds the credit,
	// and promotes from the waitlist when a seat frees up.
	Cancel(ctx context.Context, bookingID, memberID int) (*CancelResult, error)

	LeaveWaitlist(ctx context.Context, classID, memberID int) (*WaitlistEntry, error)
	Position(ctx context.Context, classID, memberID int) (*WaitlistEntry, error)

	GetMemberBookings(ctx context.Context, memberID int, onlyUpcoming bool) ([]BookingWithDetails, error)
	GetClassRoster(ctx context.Context, classID int) ([]BookingWithDetails, error)
	GetClassWaitlist(ctx context.Context, classID int) ([]WaitlistEntry, error)
}

type service struct {
	repo    Repository
	classes classes.Repository
	subs    subscription.Repository
	policy  *classes.Policy
	events  EventSink
}

func NewService(repo Repository, classRepo classes.Repository, subRepo subscription.Repository, policy *classes.Policy, events EventSink) Service {
	if events == nil {
		events = Fanout{}
	}
	return &service{
		repo:    repo,
		classes: classRepo,
		subs:    subRepo,
		policy:  policy,
		events:  events,
	}
}

func (s *service) Book(ctx context.Context, classID, memberID int) (*BookResult, error) {
	class, err := s.classes.GetClassByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classes.ErrClassNotFound
		}
		return nil, err
	}
	if class.Status != classes.StatusActive {
		return nil, ErrClassNotActive
	}

	if err := s.policy.CheckBookable(class.StartTime); err != nil {
		return nil, err
	}

	sub, err := s.subs.GetActiveForMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}

	if err := entitlement.Evaluate(sub, class); err != nil {
		return nil, err
	}

	result, err := s.repo.BookOrWaitlist(ctx, classID, memberID, sub)
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(result.Outcome))
	switch result.Outcome {
	case OutcomeConfirmed:
		logger.Info("booking confirmed", "member_id", memberID, "class_id", classID, "booking_id", result.Booking.ID)
		s.events.Publish(ctx, Event{
			Type:       EventBookingConfirmed,
			MemberID:   memberID,
			ClassID:    classID,
			ClassTitle: class.Title,
			ClassStart: class.StartTime,
			BookingID:  result.Booking.ID,
		})
	case OutcomeWaitlisted:
		logger.Info("member waitlisted", "member_id", memberID, "class_id", classID, "position", result.Position)
		s.events.Publish(ctx, Event{
			Type:       EventWaitlistJoined,
			MemberID:   memberID,
			ClassID:    classID,
			ClassTitle: class.Title,
			ClassStart: class.StartTime,
			Position:   result.Position,
		})
	}

	return result, nil
}

func (s *service) Cancel(ctx context.Context, bookingID, memberID int) (*CancelResult, error) {
	bk, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.MemberID != memberID {
		return nil, ErrNotYourBooking
	}
	if bk.Status != StatusConfirmed {
		return nil, ErrBookingAlreadyCancelled
	}

	class, err := s.classes.GetClassByID(ctx, bk.ClassID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CheckCancellable(class.StartTime); err != nil {
		return nil, err
	}

	// Promotion candidates are re-checked against the class at the moment
	// the seat frees, not against their entitlement at join time.
	eligible := func(sub *subscription.Subscription) error {
		return entitlement.Evaluate(sub, class)
	}

	result, err := s.repo.CancelAndPromote(ctx, bookingID, eligible)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()
	logger.Info("booking cancelled", "member_id", memberID, "class_id", bk.ClassID, "booking_id", bookingID)
	s.events.Publish(ctx, Event{
		Type:       EventBookingCancelled,
		MemberID:   memberID,
		ClassID:    bk.ClassID,
		ClassTitle: class.Title,
		ClassStart: class.StartTime,
		BookingID:  bookingID,
	})

	for i := 0; i < result.SkippedEntries; i++ {
		metrics.RecordWaitlistPromotionSkip()
	}

	if result.Promoted != nil {
		metrics.RecordWaitlistPromotion()
		logger.Info("waitlist member promoted",
			"member_id", result.Promoted.Entry.MemberID,
			"class_id", bk.ClassID,
			"booking_id", result.Promoted.Booking.ID)
		s.events.Publish(ctx, Event{
			Type:       EventWaitlistPromoted,
			MemberID:   result.Promoted.Entry.MemberID,
			ClassID:    bk.ClassID,
			ClassTitle: class.Title,
			ClassStart: class.StartTime,
			BookingID:  result.Promoted.Booking.ID,
		})
	}

	return result, nil
}

func (s *service) LeaveWaitlist(ctx context.Context, classID, memberID int) (*WaitlistEntry, error) {
	entry, err := s.repo.LeaveWaitlist(ctx, classID, memberID)
	if err != nil {
		return nil, err
	}

	logger.Info("member left waitlist", "member_id", memberID, "class_id", classID, "position", entry.Position)
	return entry, nil
}

func (s *service) Position(ctx context.Context, classID, memberID int) (*WaitlistEntry, error) {
	return s.repo.PositionOf(ctx, classID, memberID)
}

func (s *service) GetMemberBookings(ctx context.Context, memberID int, onlyUpcoming bool) ([]BookingWithDetails, error) {
	return s.repo.GetMemberBookings(ctx, memberID, onlyUpcoming)
}

func (s *service) GetClassRoster(ctx context.Context, classID int) ([]BookingWithDetails, error) {
	return s.repo.GetBookingsByClass(ctx, classID)
}

func (s *service) GetClassWaitlist(ctx context.Context, classID int) ([]WaitlistEntry, error) {
	return s.repo.GetWaitlistByClass(ctx, classID)
}
