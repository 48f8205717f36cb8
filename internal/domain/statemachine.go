package domain

import (
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/borctakip/debt-tracker/pkg/errors"
)

// The status lifecycle:
//
//	active ──markPaid──────────────▶ paid
//	active ──recordPayment─────────▶ partially_paid
//	partially_paid ──markPaid──────▶ paid
//	partially_paid ──recordPayment─▶ partially_paid
//	paid ──markUnpaid──────────────▶ active
//	partially_paid ──markUnpaid────▶ active
//
// markPaid on an already paid debt and markUnpaid on an active debt are
// no-ops: the record is returned unchanged and UpdatedAt is not touched.

// MarkPaid transitions the debt to paid from any state.
func (d *Debt) MarkPaid(now time.Time) error {
	if d.Status == StatusPaid {
		return nil
	}

	d.Status = StatusPaid
	d.PaidAt = &now
	d.UpdatedAt = now
	return nil
}

// MarkUnpaid reverts a paid or partially paid debt back to active.
// Cumulative partial payments are reset along with the status.
func (d *Debt) MarkUnpaid(now time.Time) error {
	if d.Status == StatusActive {
		return nil
	}

	d.Status = StatusActive
	d.PaidTotal = decimal.Zero
	d.PaidAt = nil
	d.UpdatedAt = now
	return nil
}

// RecordPayment applies a partial payment. Payments accumulate in PaidTotal;
// the cumulative total must stay strictly below AmountBase, otherwise the
// caller should use MarkPaid.
func (d *Debt) RecordPayment(amount decimal.Decimal, now time.Time) error {
	if d.Status == StatusPaid {
		return customError.WrapInvalidTransition(string(d.Status), string(StatusPartiallyPaid))
	}

	if !amount.IsPositive() {
		return customError.WrapValidation("amount", "partial payment must be positive")
	}

	if d.PaidTotal.Add(amount).GreaterThanOrEqual(d.AmountBase) {
		return customError.WrapInvalidTransition(string(d.Status), string(StatusPartiallyPaid))
	}

	d.Status = StatusPartiallyPaid
	d.PaidTotal = d.PaidTotal.Add(amount)
	d.UpdatedAt = now
	return nil
}
