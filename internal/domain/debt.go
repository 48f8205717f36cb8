package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an ISO currency code supported by the tracker.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// BaseCurrency is the currency every amount is normalized into.
const BaseCurrency = CurrencyTRY

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyTRY, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// DebtType is the direction of the obligation.
type DebtType string

const (
	DebtTypeIOwe    DebtType = "i_owe"
	DebtTypeTheyOwe DebtType = "they_owe"
)

func (t DebtType) Valid() bool {
	switch t {
	case DebtTypeIOwe, DebtTypeTheyOwe:
		return true
	}
	return false
}

// Label returns the display string for a debt type.
func (t DebtType) Label() string {
	switch t {
	case DebtTypeIOwe:
		return "I Owe"
	case DebtTypeTheyOwe:
		return "They Owe"
	}
	return ""
}

// DebtCategory classifies what the debt is for.
type DebtCategory string

const (
	CategoryPersonalLoan  DebtCategory = "personal_loan"
	CategoryRent          DebtCategory = "rent"
	CategorySharedExpense DebtCategory = "shared_expense"
	CategoryBusinessLoan  DebtCategory = "business_loan"
	CategoryEducation     DebtCategory = "education"
	CategoryOther         DebtCategory = "other"
)

func (c DebtCategory) Valid() bool {
	switch c {
	case CategoryPersonalLoan, CategoryRent, CategorySharedExpense,
		CategoryBusinessLoan, CategoryEducation, CategoryOther:
		return true
	}
	return false
}

// Label returns the display string for a category. The switch is exhaustive
// over the declared constants; an unknown value yields the empty string and
// is rejected at construction by Valid.
func (c DebtCategory) Label() string {
	switch c {
	case CategoryPersonalLoan:
		return "Personal Loan"
	case CategoryRent:
		return "Rent"
	case CategorySharedExpense:
		return "Shared Expense"
	case CategoryBusinessLoan:
		return "Business Loan"
	case CategoryEducation:
		return "Education"
	case CategoryOther:
		return "Other"
	}
	return ""
}

// DebtStatus is the payment lifecycle state of a debt.
type DebtStatus string

const (
	StatusActive        DebtStatus = "active"
	StatusPartiallyPaid DebtStatus = "partially_paid"
	StatusPaid          DebtStatus = "paid"
)

func (s DebtStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPartiallyPaid, StatusPaid:
		return true
	}
	return false
}

func (s DebtStatus) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusPartiallyPaid:
		return "Partially Paid"
	case StatusPaid:
		return "Paid"
	}
	return ""
}

// Debt represents one tracked obligation between the owner and a counterparty.
// AmountBase is Amount converted into the base currency at the rate snapshot
// in effect when the record was created or last edited.
type Debt struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OwnerID     uuid.UUID       `json:"owner_id" db:"owner_id"`
	DebtType    DebtType        `json:"debt_type" db:"debt_type"`
	PersonName  string          `json:"person_name" db:"person_name"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Currency    Currency        `json:"currency" db:"currency"`
	AmountBase  decimal.Decimal `json:"amount_base" db:"amount_base"`
	Description string          `json:"description" db:"description"`
	Category    DebtCategory    `json:"category" db:"category"`
	DueDate     *time.Time      `json:"due_date" db:"due_date"`
	Status      DebtStatus      `json:"status" db:"status"`
	PaidTotal   decimal.Decimal `json:"paid_total" db:"paid_total"`
	PaidAt      *time.Time      `json:"paid_at" db:"paid_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Payment is one recorded partial payment against a debt.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	DebtID    uuid.UUID       `json:"debt_id" db:"debt_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CreateDebtRequest struct {
	DebtType    DebtType        `json:"debt_type" validate:"required"`
	PersonName  string          `json:"person_name" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    Currency        `json:"currency" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Category    DebtCategory    `json:"category" validate:"required"`
	DueDate     *string         `json:"due_date"` // ISO date, e.g. 2026-01-31
}

type UpdateDebtRequest struct {
	PersonName  *string          `json:"person_name"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *Currency        `json:"currency"`
	Description *string          `json:"description"`
	Category    *DebtCategory    `json:"category"`
	DueDate     *string          `json:"due_date"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
