package booking

import "time"

type Status string
type WaitlistStatus string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"

	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistPromoted WaitlistStatus = "promoted"
	WaitlistLeft     WaitlistStatus = "left"
)

type Booking struct {
	ID             int       `db:"id" json:"id"`
	ClassID        int       `db:"class_id" json:"class_id"`
	MemberID       int       `db:"member_id" json:"member_id"`
	SubscriptionID int       `db:"subscription_id" json:"subscription_id"`
	Status         Status    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type WaitlistEntry struct {
	ID        int            `db:"id" json:"id"`
	ClassID   int            `db:"class_id" json:"class_id"`
	MemberID  int            `db:"member_id" json:"member_id"`
	Position  int            `db:"position" json:"position"`
	Status    WaitlistStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

type BookingWithDetails struct {
	Booking
	ClassTitle  string    `db:"class_title" json:"class_title"`
	ClassStart  time.Time `db:"class_start" json:"class_start"`
	MemberName  string    `db:"member_name" json:"member_name"`
	MemberEmail string    `db:"member_email" json:"member_email"`
}

type Outcome string

const (
	OutcomeConfirmed  Outcome = "confirmed"
	OutcomeWaitlisted Outcome = "waitlisted"
)

// BookResult is what a booking request resolves to: a confirmed seat, or a
// waitlist spot when the class is full.
type BookResult struct {
	Outcome  Outcome        `json:"outcome"`
	Booking  *Booking       `json:"booking,omitempty"`
	Entry    *WaitlistEntry `json:"waitlist_entry,omitempty"`
	Position int            `json:"position,omitempty"`
}

// Promotion records a waitlist entry converted into a confirmed booking
// during a cancellation.
type Promotion struct {
	Entry   WaitlistEntry `json:"entry"`
	Booking Booking       `json:"booking"`
}

type CancelResult struct {
	Booking *Booking `json:"booking"`
	// SeatFreed is true when the class was full before this cancellation,
	// i.e. a seat became claimable by the waitlist.
	SeatFreed bool       `json:"seat_freed"`
	Promoted  *Promotion `json:"promoted,omitempty"`
	// SkippedEntries counts waiting members passed over because their
	// entitlement no longer allowed the class.
	SkippedEntries int `json:"-"`
}
