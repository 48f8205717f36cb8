package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/internal/currency"
	"github.com/borctakip/debt-tracker/internal/domain"
	"github.com/borctakip/debt-tracker/internal/repository"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
	"github.com/borctakip/debt-tracker/pkg/utils"
)

// Converter normalizes amounts into the base currency.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (currency.Conversion, error)
}

type DebtService struct {
	debtRepo    repository.DebtRepository
	paymentRepo repository.PaymentRepository
	converter   Converter
}

func NewDebtService(
	debtRepo repository.DebtRepository,
	paymentRepo repository.PaymentRepository,
	converter Converter,
) *DebtService {
	return &DebtService{
		debtRepo:    debtRepo,
		paymentRepo: paymentRepo,
		converter:   converter,
	}
}

// CreateDebt validates the request, normalizes the amount into the base
// currency at the current rate snapshot, and persists the new record.
func (s *DebtService) CreateDebt(ctx context.Context, ownerID uuid.UUID, request *domain.CreateDebtRequest) (*domain.Debt, error) {
	if !request.DebtType.Valid() {
		return nil, customError.WrapValidation("debt_type", "must be i_owe or they_owe")
	}
	if !request.Currency.Valid() {
		return nil, customError.WrapValidation("currency", "must be one of TRY, USD, EUR")
	}
	if !request.Category.Valid() {
		return nil, customError.WrapValidation("category", "unknown category")
	}
	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("amount", "must be greater than zero")
	}

	dueDate, err := parseDueDate(request.DueDate)
	if err != nil {
		return nil, err
	}

	conversion, err := s.converter.Convert(ctx, request.Amount, request.Currency, domain.BaseCurrency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	debt := &domain.Debt{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		DebtType:    request.DebtType,
		PersonName:  request.PersonName,
		Amount:      request.Amount,
		Currency:    request.Currency,
		AmountBase:  conversion.Amount,
		Description: request.Description,
		Category:    request.Category,
		DueDate:     dueDate,
		Status:      domain.StatusActive,
		PaidTotal:   decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.debtRepo.Create(ctx, debt); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return debt, nil
}

func (s *DebtService) ListDebts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Debt, error) {
	debts, err := s.debtRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return debts, nil
}

func (s *DebtService) GetDebt(ctx context.Context, ownerID, debtID uuid.UUID) (*domain.Debt, error) {
	debt, err := s.debtRepo.GetByID(ctx, ownerID, debtID)
	if err != nil {
		return nil, wrapRepoError(err, debtID)
	}

	return debt, nil
}

// UpdateDebt applies a partial edit. When amount or currency change, the
// base amount is recomputed at the rate snapshot in effect now.
func (s *DebtService) UpdateDebt(ctx context.Context, ownerID, debtID uuid.UUID, request *domain.UpdateDebtRequest) (*domain.Debt, error) {
	if request.Currency != nil && !request.Currency.Valid() {
		return nil, customError.WrapValidation("currency", "must be one of TRY, USD, EUR")
	}
	if request.Category != nil && !request.Category.Valid() {
		return nil, customError.WrapValidation("category", "unknown category")
	}
	if request.Amount != nil && !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("amount", "must be greater than zero")
	}
	if request.PersonName != nil && *request.PersonName == "" {
		return nil, customError.WrapValidation("person_name", "must not be empty")
	}
	if request.Description != nil && *request.Description == "" {
		return nil, customError.WrapValidation("description", "must not be empty")
	}

	var dueDate *time.Time
	if request.DueDate != nil {
		parsed, err := parseDueDate(request.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = parsed
	}

	debt, err := s.debtRepo.Transition(ctx, ownerID, debtID, func(debt *domain.Debt) error {
		if request.PersonName != nil {
			debt.PersonName = *request.PersonName
		}
		if request.Description != nil {
			debt.Description = *request.Description
		}
		if request.Category != nil {
			debt.Category = *request.Category
		}
		if request.DueDate != nil {
			debt.DueDate = dueDate
		}

		if request.Amount != nil || request.Currency != nil {
			if request.Amount != nil {
				debt.Amount = *request.Amount
			}
			if request.Currency != nil {
				debt.Currency = *request.Currency
			}

			conversion, err := s.converter.Convert(ctx, debt.Amount, debt.Currency, domain.BaseCurrency)
			if err != nil {
				return err
			}
			debt.AmountBase = conversion.Amount
		}

		debt.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, wrapRepoError(err, debtID)
	}

	return debt, nil
}

func (s *DebtService) DeleteDebt(ctx context.Context, ownerID, debtID uuid.UUID) error {
	if err := s.debtRepo.Delete(ctx, ownerID, debtID); err != nil {
		return wrapRepoError(err, debtID)
	}

	return nil
}

// MarkPaid transitions the debt to paid. Marking an already paid debt is a
// no-op returning the unchanged record.
func (s *DebtService) MarkPaid(ctx context.Context, ownerID, debtID uuid.UUID) (*domain.Debt, error) {
	debt, err := s.debtRepo.Transition(ctx, ownerID, debtID, func(debt *domain.Debt) error {
		return debt.MarkPaid(time.Now())
	})
	if err != nil {
		return nil, wrapRepoError(err, debtID)
	}

	return debt, nil
}

// MarkUnpaid reverts a paid debt to active. Unmarking an active debt is a
// no-op returning the unchanged record.
func (s *DebtService) MarkUnpaid(ctx context.Context, ownerID, debtID uuid.UUID) (*domain.Debt, error) {
	debt, err := s.debtRepo.Transition(ctx, ownerID, debtID, func(debt *domain.Debt) error {
		return debt.MarkUnpaid(time.Now())
	})
	if err != nil {
		return nil, wrapRepoError(err, debtID)
	}

	return debt, nil
}

// RecordPayment applies a partial payment and appends it to the payment
// history in the same transaction.
func (s *DebtService) RecordPayment(ctx context.Context, ownerID, debtID uuid.UUID, amount decimal.Decimal) (*domain.Debt, error) {
	debt, err := s.debtRepo.RecordPayment(ctx, ownerID, debtID, amount, func(debt *domain.Debt) error {
		return debt.RecordPayment(amount, time.Now())
	})
	if err != nil {
		return nil, wrapRepoError(err, debtID)
	}

	return debt, nil
}

func (s *DebtService) ListPayments(ctx context.Context, ownerID, debtID uuid.UUID) ([]*domain.Payment, error) {
	// Ownership check first so payment history never leaks across accounts.
	if _, err := s.debtRepo.GetByID(ctx, ownerID, debtID); err != nil {
		return nil, wrapRepoError(err, debtID)
	}

	payments, err := s.paymentRepo.ListByDebtID(ctx, debtID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payments, nil
}

// ComputeStats aggregates the owner's records over one consistent snapshot.
func (s *DebtService) ComputeStats(ctx context.Context, ownerID uuid.UUID) (domain.DashboardStats, error) {
	debts, err := s.debtRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.DashboardStats{}, customError.WrapDatabaseError(err)
	}

	return domain.ComputeStats(debts, time.Now()), nil
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	parsed, err := utils.ParseDate(*raw)
	if err != nil {
		return nil, customError.WrapValidation("due_date", "must be an ISO date (YYYY-MM-DD)")
	}

	return &parsed, nil
}

// wrapRepoError translates storage errors, keeping business errors raised
// inside transition callbacks intact.
func wrapRepoError(err error, debtID uuid.UUID) error {
	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapDebtNotFound(debtID.String())
	}

	return customError.WrapDatabaseError(err)
}
