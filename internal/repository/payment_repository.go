package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/borctakip/debt-tracker/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListByDebtID(ctx context.Context, debtID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, debt_id, amount, created_at
		FROM payments
		WHERE debt_id = $1
		ORDER BY created_at
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, debtID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
