package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/internal/domain"
)

// TransitionFunc mutates a debt inside a row-locked transaction. Returning
// an error aborts the transaction and leaves the record untouched.
type TransitionFunc func(debt *domain.Debt) error

// DebtRepository defines the interface for debt data operations
type DebtRepository interface {
	// Create creates a new debt record
	Create(ctx context.Context, debt *domain.Debt) error

	// GetByID retrieves a debt owned by the given account
	GetByID(ctx context.Context, ownerID, debtID uuid.UUID) (*domain.Debt, error)

	// ListByOwner retrieves all of an owner's debts in one consistent snapshot
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Debt, error)

	// Transition applies fn to the debt under a row lock and persists the result
	Transition(ctx context.Context, ownerID, debtID uuid.UUID, fn TransitionFunc) (*domain.Debt, error)

	// RecordPayment is Transition plus an inserted payment row, atomically
	RecordPayment(ctx context.Context, ownerID, debtID uuid.UUID, amount decimal.Decimal, fn TransitionFunc) (*domain.Debt, error)

	// Delete removes a debt owned by the given account
	Delete(ctx context.Context, ownerID, debtID uuid.UUID) error

	// ListOverdue returns active debts whose due date has passed
	ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Debt, error)
}

// PaymentRepository defines the interface for partial payment history
type PaymentRepository interface {
	// ListByDebtID retrieves the payments recorded against a debt
	ListByDebtID(ctx context.Context, debtID uuid.UUID) ([]*domain.Payment, error)
}

// UserRepository defines the interface for account data operations
type UserRepository interface {
	// Create creates a new user account
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
