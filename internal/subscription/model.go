package subscription

import "time"

type Category string
type Equipment string
type Status string

const (
	CategoryGroup        Category = "group"
	CategoryPersonal     Category = "personal"
	CategoryPersonalDuo  Category = "personal_duo"
	CategoryPersonalTrio Category = "personal_trio"

	EquipmentMat      Equipment = "mat"
	EquipmentReformer Equipment = "reformer"
	EquipmentBoth     Equipment = "both"

	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Subscription struct {
	ID       int      `db:"id" json:"id"`
	MemberID int      `db:"member_id" json:"member_id"`
	Category Category `db:"category" json:"category"`
	// Equipment the plan grants access to; "both" satisfies any class.
	Equipment Equipment `db:"equipment" json:"equipment"`
	// nil means unlimited; RemainingCredits is meaningless in that case.
	MonthlyAllotment *int      `db:"monthly_allotment" json:"monthly_allotment,omitempty"`
	RemainingCredits int       `db:"remaining_credits" json:"remaining_credits"`
	Status           Status    `db:"status" json:"status"`
	ValidFrom        time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil       time.Time `db:"valid_until" json:"valid_until"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Subscription) Unlimited() bool {
	return s.MonthlyAllotment == nil
}

// DayPass reports whether the plan is valid for at most one day. Day passes
// are always treated as group-compatible by the entitlement rules, whatever
// their nominal category.
func (s *Subscription) DayPass() bool {
	return !s.ValidUntil.After(s.ValidFrom.Add(24 * time.Hour))
}
