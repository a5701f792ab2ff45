package classes

import (
	"errors"
	"fmt"
	"time"
)

// Class start times are entered as civil time in the studio's timezone.
const CivilTimeLayout = "2006-01-02 15:04"

var (
	ErrClassAlreadyStarted = errors.New("class has already started")
	ErrTooCloseToStart     = errors.New("too close to class start to book")
	ErrTooLateToCancel     = errors.New("too late to cancel booking")
)

// Policy answers every temporal gating question in one canonical studio
// timezone so cutoffs behave identically regardless of the client's clock.
// Boundary instants (exactly at the lockout or notice threshold) are denied.
type Policy struct {
	loc          *time.Location
	lockout      time.Duration
	cancelNotice time.Duration
	now          func() time.Time
}

func NewPolicy(timezone string, lockout, cancelNotice time.Duration) (*Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid studio timezone %q: %w", timezone, err)
	}

	return &Policy{
		loc:          loc,
		lockout:      lockout,
		cancelNotice: cancelNotice,
		now:          time.Now,
	}, nil
}

func (p *Policy) Location() *time.Location {
	return p.loc
}

// ParseCivil converts the boundary representation (studio-local civil time)
// into an instant. All arithmetic below works on instants; "now" is never
// re-derived via string round-tripping.
func (p *Policy) ParseCivil(value string) (time.Time, error) {
	return time.ParseInLocation(CivilTimeLayout, value, p.loc)
}

func (p *Policy) CheckBookable(classStart time.Time) error {
	now := p.now().In(p.loc)
	if !now.Before(classStart) {
		return ErrClassAlreadyStarted
	}
	if classStart.Sub(now) <= p.lockout {
		return ErrTooCloseToStart
	}
	return nil
}

func (p *Policy) CheckCancellable(classStart time.Time) error {
	now := p.now().In(p.loc)
	if !now.Before(classStart) {
		return ErrTooLateToCancel
	}
	if classStart.Sub(now) <= p.cancelNotice {
		return ErrTooLateToCancel
	}
	return nil
}

func (p *Policy) IsBookable(classStart time.Time) bool {
	return p.CheckBookable(classStart) == nil
}

func (p *Policy) CanCancel(classStart time.Time) bool {
	return p.CheckCancellable(classStart) == nil
}

// Joining the waitlist follows the same cutoff as booking.
func (p *Policy) CanJoinWaitlist(classStart time.Time) bool {
	return p.CheckBookable(classStart) == nil
}

// TimeRemaining is for user-facing messaging only, never for gating.
func (p *Policy) TimeRemaining(classStart time.Time) time.Duration {
	remaining := classStart.Sub(p.now().In(p.loc))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WithClock fixes the policy's clock. Tests only.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	clone := *p
	clone.now = now
	return &clone
}
