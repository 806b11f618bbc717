package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LifecycleRepository struct {
	pool *pgxpool.Pool
}

func NewLifecycleRepository(pool *pgxpool.Pool) *LifecycleRepository {
	return &LifecycleRepository{pool: pool}
}

func (r *LifecycleRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LifecycleRepository) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	const query = `
SELECT id, user_id, spot_id, start_time, end_time, price_cents, payment, status, created_at
FROM bookings
WHERE id = $1
FOR UPDATE`

	var b domain.Booking
	err := r.queryRow(ctx, query, bookingID).
		Scan(&b.ID, &b.UserID, &b.SpotID, &b.Start, &b.End, &b.Price, &b.Payment, &b.Status, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *LifecycleRepository) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	const stmt = `UPDATE bookings SET status = $2 WHERE id = $1`
	tag, err := r.exec(ctx, stmt, bookingID, status)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *LifecycleRepository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	// The status precondition makes concurrent sweeps race-safe: a row
	// already completed by another sweep no longer matches.
	const stmt = `
UPDATE bookings
SET status = 'completed'
WHERE status = 'confirmed' AND end_time <= $1`

	tag, err := r.exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("complete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LifecycleRepository) DeleteBooking(ctx context.Context, bookingID string) error {
	const stmt = `DELETE FROM bookings WHERE id = $1`
	tag, err := r.exec(ctx, stmt, bookingID)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *LifecycleRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LifecycleRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
