package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/borctakip/debt-tracker/pkg/errors"
)

func newActiveDebt() *Debt {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &Debt{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		DebtType:    DebtTypeIOwe,
		PersonName:  "Ali",
		Amount:      decimal.NewFromInt(1000),
		Currency:    CurrencyTRY,
		AmountBase:  decimal.NewFromInt(1000),
		Description: "Kira",
		Category:    CategoryRent,
		Status:      StatusActive,
		PaidTotal:   decimal.Zero,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestMarkPaid_FromActive(t *testing.T) {
	debt := newActiveDebt()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, debt.MarkPaid(now))

	assert.Equal(t, StatusPaid, debt.Status)
	require.NotNil(t, debt.PaidAt)
	assert.Equal(t, now, *debt.PaidAt)
	assert.Equal(t, now, debt.UpdatedAt)
}

func TestMarkPaid_AlreadyPaidIsNoOp(t *testing.T) {
	debt := newActiveDebt()
	first := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, debt.MarkPaid(first))

	later := first.Add(48 * time.Hour)
	require.NoError(t, debt.MarkPaid(later))

	assert.Equal(t, StatusPaid, debt.Status)
	assert.Equal(t, first, *debt.PaidAt)
	assert.Equal(t, first, debt.UpdatedAt)
}

func TestMarkUnpaid_OnActiveIsNoOp(t *testing.T) {
	debt := newActiveDebt()
	originalUpdated := debt.UpdatedAt

	require.NoError(t, debt.MarkUnpaid(time.Now()))

	assert.Equal(t, StatusActive, debt.Status)
	assert.Equal(t, originalUpdated, debt.UpdatedAt)
}

func TestMarkPaidThenUnpaid_RoundTripKeepsNonStatusFields(t *testing.T) {
	debt := newActiveDebt()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, debt.MarkPaid(now))
	require.NoError(t, debt.MarkUnpaid(now.Add(time.Hour)))

	assert.Equal(t, StatusActive, debt.Status)
	assert.Nil(t, debt.PaidAt)
	assert.True(t, debt.AmountBase.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Ali", debt.PersonName)
	assert.Equal(t, CategoryRent, debt.Category)
}

func TestMarkUnpaid_FromPartiallyPaidResetsPaidTotal(t *testing.T) {
	debt := newActiveDebt()
	now := time.Now()

	require.NoError(t, debt.RecordPayment(decimal.NewFromInt(400), now))
	require.Equal(t, StatusPartiallyPaid, debt.Status)

	require.NoError(t, debt.MarkUnpaid(now))

	assert.Equal(t, StatusActive, debt.Status)
	assert.True(t, debt.PaidTotal.IsZero())
}

func TestRecordPayment_Accumulates(t *testing.T) {
	debt := newActiveDebt()
	now := time.Now()

	require.NoError(t, debt.RecordPayment(decimal.NewFromInt(300), now))
	require.NoError(t, debt.RecordPayment(decimal.NewFromInt(300), now))

	assert.Equal(t, StatusPartiallyPaid, debt.Status)
	assert.True(t, debt.PaidTotal.Equal(decimal.NewFromInt(600)))
}

func TestRecordPayment_GuardRejectsOverpayment(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "equal to amount base", amount: decimal.NewFromInt(1000)},
		{name: "above amount base", amount: decimal.NewFromInt(1200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debt := newActiveDebt()

			err := debt.RecordPayment(tt.amount, time.Now())

			require.Error(t, err)
			assert.True(t, errors.Is(err, customError.ErrInvalidTransition))
			assert.Equal(t, StatusActive, debt.Status)
			assert.True(t, debt.PaidTotal.IsZero())
		})
	}
}

func TestRecordPayment_GuardCountsCumulativeTotal(t *testing.T) {
	debt := newActiveDebt()
	now := time.Now()

	require.NoError(t, debt.RecordPayment(decimal.NewFromInt(700), now))

	err := debt.RecordPayment(decimal.NewFromInt(300), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidTransition))
	assert.True(t, debt.PaidTotal.Equal(decimal.NewFromInt(700)))
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	debt := newActiveDebt()

	err := debt.RecordPayment(decimal.Zero, time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrValidation))
}

func TestRecordPayment_OnPaidDebtFails(t *testing.T) {
	debt := newActiveDebt()
	require.NoError(t, debt.MarkPaid(time.Now()))

	err := debt.RecordPayment(decimal.NewFromInt(100), time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidTransition))

	var bizErr *customError.BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Contains(t, bizErr.Message, string(StatusPaid))
}

func TestMarkPaid_FromPartiallyPaid(t *testing.T) {
	debt := newActiveDebt()
	now := time.Now()

	require.NoError(t, debt.RecordPayment(decimal.NewFromInt(500), now))
	require.NoError(t, debt.MarkPaid(now))

	assert.Equal(t, StatusPaid, debt.Status)
}
