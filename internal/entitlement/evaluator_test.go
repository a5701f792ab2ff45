package entitlement

import (
	"testing"
	"time"

	"classflow/internal/classes"
	"classflow/internal/subscription"

	"github.com/stretchr/testify/assert"
)

func monthlySub(category subscription.Category, equipment subscription.Equipment, credits int) *subscription.Subscription {
	now := time.Now()
	allotment := 8

	return &subscription.Subscription{
		ID:               1,
		MemberID:         1,
		Category:         category,
		Equipment:        equipment,
		MonthlyAllotment: &allotment,
		RemainingCredits: credits,
		Status:           subscription.StatusActive,
		ValidFrom:        now,
		ValidUntil:       now.AddDate(0, 1, 0),
	}
}

func groupClass(equipment classes.Equipment) *classes.ClassSlot {
	return &classes.ClassSlot{
		ID:        1,
		Category:  classes.CategoryGroup,
		Equipment: equipment,
		Capacity:  10,
		Status:    classes.StatusActive,
	}
}

func personalClass(capacity int) *classes.ClassSlot {
	return &classes.ClassSlot{
		ID:        2,
		Category:  classes.CategoryPersonal,
		Equipment: classes.EquipmentReformer,
		Capacity:  capacity,
		Status:    classes.StatusActive,
	}
}

func TestEvaluateRuleOrder(t *testing.T) {
	// An inactive subscription with zero credits and mismatched everything
	// must fail on the status rule first.
	sub := monthlySub(subscription.CategoryPersonal, subscription.EquipmentMat, 0)
	sub.Status = subscription.StatusInactive

	assert.ErrorIs(t, Evaluate(sub, groupClass(classes.EquipmentReformer)), ErrInactiveSubscription)
}

func TestEvaluateCredits(t *testing.T) {
	sub := monthlySub(subscription.CategoryGroup, subscription.EquipmentMat, 0)
	assert.ErrorIs(t, Evaluate(sub, groupClass(classes.EquipmentMat)), ErrNoRemainingCredits)

	// Unlimited plans ignore the balance entirely.
	unlimited := monthlySub(subscription.CategoryGroup, subscription.EquipmentMat, 0)
	unlimited.MonthlyAllotment = nil
	assert.NoError(t, Evaluate(unlimited, groupClass(classes.EquipmentMat)))
}

func TestEvaluateCategory(t *testing.T) {
	tests := []struct {
		name     string
		category subscription.Category
		class    *classes.ClassSlot
		wantErr  error
	}{
		{"group plan books group class", subscription.CategoryGroup, groupClass(classes.EquipmentMat), nil},
		{"personal plan denied for group class", subscription.CategoryPersonal, groupClass(classes.EquipmentMat), ErrCategoryMismatch},
		{"duo plan denied for group class", subscription.CategoryPersonalDuo, groupClass(classes.EquipmentMat), ErrCategoryMismatch},
		{"trio plan denied for group class", subscription.CategoryPersonalTrio, groupClass(classes.EquipmentMat), ErrCategoryMismatch},
		{"personal plan books solo personal class", subscription.CategoryPersonal, personalClass(1), nil},
		{"personal plan denied for duo class", subscription.CategoryPersonal, personalClass(2), ErrCategoryMismatch},
		{"duo plan books duo class", subscription.CategoryPersonalDuo, personalClass(2), nil},
		{"trio plan books trio class", subscription.CategoryPersonalTrio, personalClass(3), nil},
		{"group plan denied for personal class", subscription.CategoryGroup, personalClass(1), ErrCategoryMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := monthlySub(tt.category, subscription.EquipmentBoth, 5)
			err := Evaluate(sub, tt.class)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateDayPass(t *testing.T) {
	// A day pass keeps its nominal category but always counts as
	// group-compatible.
	sub := monthlySub(subscription.CategoryPersonal, subscription.EquipmentMat, 1)
	sub.ValidUntil = sub.ValidFrom.Add(24 * time.Hour)

	assert.NoError(t, Evaluate(sub, groupClass(classes.EquipmentMat)))

	// The exception does not extend to personal classes.
	assert.ErrorIs(t, Evaluate(sub, personalClass(2)), ErrCategoryMismatch)
}

func TestEvaluateEquipment(t *testing.T) {
	tests := []struct {
		name      string
		equipment subscription.Equipment
		class     *classes.ClassSlot
		wantErr   error
	}{
		{"mat access for mat class", subscription.EquipmentMat, groupClass(classes.EquipmentMat), nil},
		{"mat access denied for reformer class", subscription.EquipmentMat, groupClass(classes.EquipmentReformer), ErrEquipmentMismatch},
		{"reformer access denied for mat class", subscription.EquipmentReformer, groupClass(classes.EquipmentMat), ErrEquipmentMismatch},
		{"both satisfies reformer", subscription.EquipmentBoth, groupClass(classes.EquipmentReformer), nil},
		{"both satisfies mat", subscription.EquipmentBoth, groupClass(classes.EquipmentMat), nil},
		{"exact match for both-equipment class", subscription.EquipmentBoth, groupClass(classes.EquipmentBoth), nil},
		{"mat denied for both-equipment class", subscription.EquipmentMat, groupClass(classes.EquipmentBoth), ErrEquipmentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := monthlySub(subscription.CategoryGroup, tt.equipment, 5)
			err := Evaluate(sub, tt.class)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	sub := monthlySub(subscription.CategoryGroup, subscription.EquipmentMat, 5)
	class := groupClass(classes.EquipmentMat)

	before := *sub
	_ = Evaluate(sub, class)

	assert.Equal(t, before, *sub)
	assert.Equal(t, 5, sub.RemainingCredits)
}
