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

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const spotColumns = `id, label, description, latitude, longitude, created_at`

func (r *BookingRepository) GetSpot(ctx context.Context, spotID string) (domain.Spot, error) {
	const query = `SELECT ` + spotColumns + ` FROM spots WHERE id = $1`
	return r.scanSpot(r.queryRow(ctx, query, spotID))
}

func (r *BookingRepository) GetSpotForUpdate(ctx context.Context, spotID string) (domain.Spot, error) {
	const query = `SELECT ` + spotColumns + ` FROM spots WHERE id = $1 FOR UPDATE`
	return r.scanSpot(r.queryRow(ctx, query, spotID))
}

func (r *BookingRepository) scanSpot(row pgx.Row) (domain.Spot, error) {
	var s domain.Spot
	err := row.Scan(&s.ID, &s.Label, &s.Description, &s.Latitude, &s.Longitude, &s.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Spot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Spot{}, domain.ErrSpotNotFound
		}
		return domain.Spot{}, fmt.Errorf("get spot: %w", err)
	}
	return s, nil
}

func (r *BookingRepository) HasOverlap(ctx context.Context, spotID string, start, end time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM bookings
	WHERE spot_id = $1
	  AND status IN ('pending', 'confirmed')
	  AND start_time < $3
	  AND end_time > $2
)`

	var conflict bool
	if err := r.queryRow(ctx, query, spotID, start, end).Scan(&conflict); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return conflict, nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, user_id, spot_id, start_time, end_time, price_cents, payment, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		b.ID,
		b.UserID,
		b.SpotID,
		b.Start,
		b.End,
		b.Price,
		b.Payment,
		b.Status,
		b.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrSpotNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	const query = `
SELECT id, user_id, spot_id, start_time, end_time, price_cents, payment, status, created_at
FROM bookings
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.SpotID, &b.Start, &b.End, &b.Price, &b.Payment, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
