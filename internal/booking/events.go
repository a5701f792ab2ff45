package booking

import (
	"context"
	"time"
)

type EventType string

const (
	EventBookingConfirmed EventType = "booking_confirmed"
	EventWaitlistJoined   EventType = "waitlist_joined"
	EventBookingCancelled EventType = "booking_cancelled"
	EventWaitlistPromoted EventType = "waitlist_promoted"
)

// Event describes a lifecycle transition. Events are published only after the
// transaction that caused them has committed, so consumers never observe
// state that later rolls back.
type Event struct {
	Type       EventType
	MemberID   int
	ClassID    int
	ClassTitle string
	ClassStart time.Time
	BookingID  int
	Position   int
}

type EventSink interface {
	Publish(ctx context.Context, event Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(ctx context.Context, event Event)

func (f SinkFunc) Publish(ctx context.Context, event Event) {
	f(ctx, event)
}

// Fanout delivers each event to every sink in order.
type Fanout []EventSink

func (f Fanout) Publish(ctx context.Context, event Event) {
	for _, sink := range f {
		sink.Publish(ctx, event)
	}
}
