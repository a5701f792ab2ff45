package notify

import (
	"context"

	"classflow/internal/booking"
	"classflow/internal/logger"
	"classflow/internal/member"
)

// Sink turns booking lifecycle events into queued notifications. Lookup
// failures are logged and swallowed: a missed email never fails a booking.
type Sink struct {
	service *Service
	members member.Repository
}

func NewSink(service *Service, members member.Repository) *Sink {
	return &Sink{
		service: service,
		members: members,
	}
}

// Publish implements booking.EventSink.
func (s *Sink) Publish(ctx context.Context, event booking.Event) {
	m, err := s.members.FindByID(ctx, event.MemberID)
	if err != nil {
		logger.Error("failed to look up member for notification",
			"member_id", event.MemberID, "event", event.Type, "error", err)
		return
	}

	switch event.Type {
	case booking.EventBookingConfirmed:
		err = s.service.SendBookingConfirmation(ctx, m.Email, m.Name, event.ClassTitle, event.ClassStart)
	case booking.EventWaitlistJoined:
		err = s.service.SendWaitlistJoined(ctx, m.Email, m.Name, event.ClassTitle, event.ClassStart, event.Position)
	case booking.EventBookingCancelled:
		err = s.service.SendBookingCancellation(ctx, m.Email, m.Name, event.ClassTitle, event.ClassStart)
	case booking.EventWaitlistPromoted:
		err = s.service.SendWaitlistPromotion(ctx, m.Email, m.Name, event.ClassTitle, event.ClassStart)
	default:
		return
	}

	if err != nil {
		logger.Error("failed to queue notification",
			"member_id", event.MemberID, "event", event.Type, "error", err)
	}
}
