package booking

import (
	"context"

	"classflow/internal/subscription"
)

// EligibilityFunc re-checks a waitlisted member's entitlement at promotion
// time, inside the cancellation transaction. A nil return means the member
// may take the freed seat.
type EligibilityFunc func(sub *subscription.Subscription) error

type Repository interface {
	// BookOrWaitlist reserves a seat for the member in one transaction: if a
	// seat is free it confirms a booking and debits the subscription's
	// credits (unless unlimited); if the class is full it appends the member
	// to the waitlist instead.
	BookOrWaitlist(ctx context.Context, classID, memberID int, sub *subscription.Subscription) (*BookResult, error)

	// CancelAndPromote cancels the booking, frees the seat, refunds one
	// credit to metered subscriptions, and, when the class had been full,
	// walks the waitlist in position order promoting the first member whose
	// entitlement still passes. Skipped members keep their place in line.
	CancelAndPromote(ctx context.Context, bookingID int, eligible EligibilityFunc) (*CancelResult, error)

	LeaveWaitlist(ctx context.Context, classID, memberID int) (*WaitlistEntry, error)
	PositionOf(ctx context.Context, classID, memberID int) (*WaitlistEntry, error)

	GetBookingByID(ctx context.Context, bookingID int) (*Booking, error)
	GetMemberBookings(ctx context.Context, memberID int, onlyUpcoming bool) ([]BookingWithDetails, error)
	GetBookingsByClass(ctx context.Context, classID int) ([]BookingWithDetails, error)
	GetWaitlistByClass(ctx context.Context, classID int) ([]WaitlistEntry, error)
}
