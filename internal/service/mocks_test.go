package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/borctakip/debt-tracker/internal/currency"
	"github.com/borctakip/debt-tracker/internal/domain"
	"github.com/borctakip/debt-tracker/internal/repository"
)

type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) Create(ctx context.Context, debt *domain.Debt) error {
	args := m.Called(ctx, debt)
	return args.Error(0)
}

func (m *MockDebtRepository) GetByID(ctx context.Context, ownerID, debtID uuid.UUID) (*domain.Debt, error) {
	args := m.Called(ctx, ownerID, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Debt, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

// Transition applies fn to the configured debt the way the real repository
// does inside its transaction.
func (m *MockDebtRepository) Transition(ctx context.Context, ownerID, debtID uuid.UUID, fn repository.TransitionFunc) (*domain.Debt, error) {
	args := m.Called(ctx, ownerID, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	debt := args.Get(0).(*domain.Debt)
	if err := fn(debt); err != nil {
		return nil, err
	}
	return debt, args.Error(1)
}

func (m *MockDebtRepository) RecordPayment(ctx context.Context, ownerID, debtID uuid.UUID, amount decimal.Decimal, fn repository.TransitionFunc) (*domain.Debt, error) {
	args := m.Called(ctx, ownerID, debtID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	debt := args.Get(0).(*domain.Debt)
	if err := fn(debt); err != nil {
		return nil, err
	}
	return debt, args.Error(1)
}

func (m *MockDebtRepository) Delete(ctx context.Context, ownerID, debtID uuid.UUID) error {
	args := m.Called(ctx, ownerID, debtID)
	return args.Error(0)
}

func (m *MockDebtRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Debt, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ListByDebtID(ctx context.Context, debtID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// stubConverter converts at a fixed TRY-per-unit rate for any non-identity
// pair.
type stubConverter struct {
	rate  decimal.Decimal
	stale bool
	err   error
}

func (c *stubConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (currency.Conversion, error) {
	if c.err != nil {
		return currency.Conversion{}, c.err
	}
	if from == to {
		return currency.Conversion{Amount: amount}, nil
	}
	return currency.Conversion{Amount: amount.Mul(c.rate).Round(2), Stale: c.stale}, nil
}
