package services

import (
	"fmt"

	"github.com/yeremiapane/cashier-desk/models"
)

// SplitTolerance absorbs rounding noise between the amount due and a split; it is not
// an allowance for under- or overpayment.
const SplitTolerance int64 = 100

// ValidateSplit accepts a split iff no tender is negative and |due - sum| < SplitTolerance.
func ValidateSplit(amountDue int64, split models.PaymentSplit) error {
	sum := split.Sum()
	if split.Cash < 0 || split.Card < 0 || split.Click < 0 {
		return NewUnbalancedSplitError(amountDue, sum, "To'lov summasi manfiy bo'lishi mumkin emas")
	}
	diff := amountDue - sum
	if diff < 0 {
		diff = -diff
	}
	if diff >= SplitTolerance {
		return NewUnbalancedSplitError(amountDue, sum,
			fmt.Sprintf("To'lov summalari mos kelmadi: jami %d, kiritildi %d", amountDue, sum))
	}
	return nil
}

// RepresentativeTender -> tender with the strictly largest share; ties go cash > card > click
func RepresentativeTender(split models.PaymentSplit) models.PaymentType {
	best := models.PaymentTypeCash
	amount := split.Cash
	if split.Card > amount {
		best, amount = models.PaymentTypeCard, split.Card
	}
	if split.Click > amount {
		best = models.PaymentTypeClick
	}
	return best
}

// ResolveTender turns the cashier's choice into what gets sent to the backend.
// A nil split is a single-tender payment and bypasses validation entirely.
func ResolveTender(amountDue int64, tender models.PaymentType, split *models.PaymentSplit) (models.PaymentType, *models.PaymentSplit, error) {
	if split == nil {
		if !tender.Valid() {
			return "", nil, ErrInvalidPayment
		}
		return tender, nil, nil
	}
	if err := ValidateSplit(amountDue, *split); err != nil {
		return "", nil, err
	}
	s := *split
	return RepresentativeTender(s), &s, nil
}
