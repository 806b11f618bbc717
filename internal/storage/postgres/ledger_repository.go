package postgres

import (
	"context"
	"fmt"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetWalletForUpdate locks the wallet row, inserting a zero-balance row
// first for a user this core has not seen. Users are provisioned by the
// external auth collaborator, so the wallet materializes lazily.
func (r *LedgerRepository) GetWalletForUpdate(ctx context.Context, userID string) (domain.Wallet, error) {
	const ensure = `
INSERT INTO wallets (user_id, balance_cents, updated_at)
VALUES ($1, 0, NOW())
ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.exec(ctx, ensure, userID); err != nil {
		return domain.Wallet{}, fmt.Errorf("ensure wallet: %w", err)
	}

	const query = `SELECT user_id, balance_cents, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE`
	var w domain.Wallet
	if err := r.queryRow(ctx, query, userID).Scan(&w.UserID, &w.Balance, &w.UpdatedAt); err != nil {
		return domain.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (r *LedgerRepository) UpdateBalance(ctx context.Context, userID string, balance domain.Cents) error {
	const stmt = `UPDATE wallets SET balance_cents = $2, updated_at = NOW() WHERE user_id = $1`
	tag, err := r.exec(ctx, stmt, userID, balance)
	if err != nil {
		if isCheckViolation(err) {
			// Schema-level backstop; the service rejects this first.
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update balance: wallet %s missing", userID)
	}
	return nil
}

func (r *LedgerRepository) AppendTransaction(ctx context.Context, txn domain.WalletTransaction) error {
	const stmt = `
INSERT INTO wallet_transactions (id, user_id, amount_cents, description, booking_id, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`

	_, err := r.exec(ctx, stmt,
		txn.ID,
		txn.UserID,
		txn.Amount,
		txn.Description,
		txn.BookingID,
		txn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("append transaction: duplicate id %s: %w", txn.ID, err)
		}
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, userID string) (domain.Cents, error) {
	const query = `SELECT COALESCE((SELECT balance_cents FROM wallets WHERE user_id = $1), 0)`
	var balance domain.Cents
	if err := r.queryRow(ctx, query, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) ListTransactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	const query = `
SELECT id, user_id, amount_cents, description, COALESCE(booking_id::text, ''), created_at
FROM wallet_transactions
WHERE user_id = $1
ORDER BY created_at DESC, id`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Description, &t.BookingID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *LedgerRepository) SumTransactions(ctx context.Context, userID string) (domain.Cents, error) {
	const query = `SELECT COALESCE(SUM(amount_cents), 0) FROM wallet_transactions WHERE user_id = $1`
	var sum domain.Cents
	if err := r.queryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *LedgerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
