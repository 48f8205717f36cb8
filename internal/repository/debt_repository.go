package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/internal/domain"
)

const debtColumns = `id, owner_id, debt_type, person_name, amount, currency, amount_base,
	description, category, due_date, status, paid_total, paid_at, created_at, updated_at`

type debtRepository struct {
	db *sqlx.DB
}

func NewDebtRepository(db *sqlx.DB) DebtRepository {
	return &debtRepository{db: db}
}

func (r *debtRepository) Create(ctx context.Context, debt *domain.Debt) error {
	query := `
		INSERT INTO debts (id, owner_id, debt_type, person_name, amount, currency, amount_base,
			description, category, due_date, status, paid_total, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		debt.ID,
		debt.OwnerID,
		debt.DebtType,
		debt.PersonName,
		debt.Amount,
		debt.Currency,
		debt.AmountBase,
		debt.Description,
		debt.Category,
		debt.DueDate,
		debt.Status,
		debt.PaidTotal,
		debt.PaidAt,
		debt.CreatedAt,
		debt.UpdatedAt,
	)

	return err
}

func (r *debtRepository) GetByID(ctx context.Context, ownerID, debtID uuid.UUID) (*domain.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE id = $1 AND owner_id = $2
	`

	var debt domain.Debt
	err := r.db.GetContext(ctx, &debt, query, debtID, ownerID)
	if err != nil {
		return nil, err
	}

	return &debt, nil
}

// ListByOwner reads all of an owner's debts inside a repeatable-read
// transaction so the aggregator sees a single consistent snapshot even while
// transitions commit concurrently.
func (r *debtRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Debt, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var debts []*domain.Debt
	if err := tx.SelectContext(ctx, &debts, query, ownerID); err != nil {
		return nil, err
	}

	return debts, tx.Commit()
}

func (r *debtRepository) Transition(ctx context.Context, ownerID, debtID uuid.UUID, fn TransitionFunc) (*domain.Debt, error) {
	return r.transitionTx(ctx, ownerID, debtID, fn, nil)
}

func (r *debtRepository) RecordPayment(ctx context.Context, ownerID, debtID uuid.UUID, amount decimal.Decimal, fn TransitionFunc) (*domain.Debt, error) {
	payment := &domain.Payment{
		ID:        uuid.New(),
		DebtID:    debtID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	return r.transitionTx(ctx, ownerID, debtID, fn, payment)
}

// transitionTx serializes mutations per record: the row is locked FOR UPDATE
// so no two transitions apply concurrently to the same debt, while debts
// with different ids proceed in parallel.
func (r *debtRepository) transitionTx(ctx context.Context, ownerID, debtID uuid.UUID, fn TransitionFunc, payment *domain.Payment) (*domain.Debt, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`

	var debt domain.Debt
	if err := tx.GetContext(ctx, &debt, query, debtID, ownerID); err != nil {
		return nil, err
	}

	if err := fn(&debt); err != nil {
		return nil, err
	}

	update := `
		UPDATE debts
		SET person_name = $3, amount = $4, currency = $5, amount_base = $6,
			description = $7, category = $8, due_date = $9, status = $10,
			paid_total = $11, paid_at = $12, updated_at = $13
		WHERE id = $1 AND owner_id = $2
	`

	_, err = tx.ExecContext(ctx, update,
		debt.ID,
		debt.OwnerID,
		debt.PersonName,
		debt.Amount,
		debt.Currency,
		debt.AmountBase,
		debt.Description,
		debt.Category,
		debt.DueDate,
		debt.Status,
		debt.PaidTotal,
		debt.PaidAt,
		debt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if payment != nil {
		insert := `
			INSERT INTO payments (id, debt_id, amount, created_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, insert,
			payment.ID, payment.DebtID, payment.Amount, payment.CreatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &debt, nil
}

func (r *debtRepository) Delete(ctx context.Context, ownerID, debtID uuid.UUID) error {
	query := `
		DELETE FROM debts
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, debtID, ownerID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *debtRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE status = $1 AND due_date IS NOT NULL AND due_date < $2
		ORDER BY due_date
	`

	var debts []*domain.Debt
	err := r.db.SelectContext(ctx, &debts, query, domain.StatusActive, asOf)
	if err != nil {
		return nil, err
	}

	return debts, nil
}
