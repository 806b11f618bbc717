package postgres

import (
	"context"
	"fmt"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentMethodRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentMethodRepository(pool *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{pool: pool}
}

func (r *PaymentMethodRepository) CreatePaymentMethod(ctx context.Context, m domain.SavedPaymentMethod) error {
	const stmt = `
INSERT INTO payment_methods (id, user_id, brand, last4, expiry_month, expiry_year, holder_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, stmt,
		m.ID,
		m.UserID,
		m.Brand,
		m.Last4,
		m.ExpiryMonth,
		m.ExpiryYear,
		m.HolderName,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepository) ListPaymentMethods(ctx context.Context, userID string) ([]domain.SavedPaymentMethod, error) {
	const query = `
SELECT id, user_id, brand, last4, expiry_month, expiry_year, holder_name, created_at
FROM payment_methods
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedPaymentMethod
	for rows.Next() {
		var m domain.SavedPaymentMethod
		if err := rows.Scan(&m.ID, &m.UserID, &m.Brand, &m.Last4, &m.ExpiryMonth, &m.ExpiryYear, &m.HolderName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PaymentMethodRepository) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	const stmt = `DELETE FROM payment_methods WHERE user_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, stmt, userID, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentMethodNotFound
	}
	return nil
}
