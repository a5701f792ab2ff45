// Package entitlement decides whether a subscription permits booking a
// specific class. Evaluate is a pure function; rules run in a fixed order and
// the first failing rule determines the denial.
package entitlement

import (
	"errors"

	"classflow/internal/classes"
	"classflow/internal/subscription"
)

var (
	ErrInactiveSubscription = errors.New("subscription is not active")
	ErrNoRemainingCredits   = errors.New("no remaining class credits")
	ErrCategoryMismatch     = errors.New("subscription category does not cover this class")
	ErrEquipmentMismatch    = errors.New("subscription does not cover this equipment")
)

func Evaluate(sub *subscription.Subscription, class *classes.ClassSlot) error {
	if sub.Status != subscription.StatusActive {
		return ErrInactiveSubscription
	}

	if !sub.Unlimited() && sub.RemainingCredits <= 0 {
		return ErrNoRemainingCredits
	}

	if err := checkCategory(sub, class); err != nil {
		return err
	}

	if sub.Equipment != subscription.EquipmentBoth &&
		string(sub.Equipment) != string(class.Equipment) {
		return ErrEquipmentMismatch
	}

	return nil
}

func checkCategory(sub *subscription.Subscription, class *classes.ClassSlot) error {
	switch class.Category {
	case classes.CategoryGroup:
		// Day passes count as group-compatible whatever their nominal
		// category; every other personal-tier plan is excluded.
		if sub.DayPass() {
			return nil
		}
		switch sub.Category {
		case subscription.CategoryPersonal,
			subscription.CategoryPersonalDuo,
			subscription.CategoryPersonalTrio:
			return ErrCategoryMismatch
		}
		return nil

	case classes.CategoryPersonal:
		// Personal classes key the required plan off class capacity; no
		// substitution between tiers.
		if sub.Category != personalTierFor(class.Capacity) {
			return ErrCategoryMismatch
		}
		return nil
	}

	return ErrCategoryMismatch
}

func personalTierFor(capacity int) subscription.Category {
	switch capacity {
	case 1:
		return subscription.CategoryPersonal
	case 2:
		return subscription.CategoryPersonalDuo
	case 3:
		return subscription.CategoryPersonalTrio
	}
	return ""
}
