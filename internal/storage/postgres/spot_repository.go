package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SpotRepository struct {
	pool *pgxpool.Pool
}

func NewSpotRepository(pool *pgxpool.Pool) *SpotRepository {
	return &SpotRepository{pool: pool}
}

// availableExpr derives the availability flag from the non-terminal booking
// set: available iff no pending/confirmed window contains the instant.
const availableExpr = `NOT EXISTS (
	SELECT 1 FROM bookings b
	WHERE b.spot_id = s.id
	  AND b.status IN ('pending', 'confirmed')
	  AND b.start_time < $%d
	  AND b.end_time > $%d
)`

func (r *SpotRepository) CreateSpot(ctx context.Context, spot domain.Spot) error {
	const stmt = `
INSERT INTO spots (id, label, description, latitude, longitude, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt,
		spot.ID,
		spot.Label,
		spot.Description,
		spot.Latitude,
		spot.Longitude,
		spot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create spot: %w", err)
	}
	return nil
}

func (r *SpotRepository) GetSpotAt(ctx context.Context, spotID string, now time.Time) (domain.Spot, error) {
	query := `
SELECT s.id, s.label, s.description, s.latitude, s.longitude, s.created_at, ` +
		fmt.Sprintf(availableExpr, 2, 2) + `
FROM spots s
WHERE s.id = $1`

	var s domain.Spot
	err := r.pool.QueryRow(ctx, query, spotID, now).
		Scan(&s.ID, &s.Label, &s.Description, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.Available)
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

func (r *SpotRepository) ListSpotsAt(ctx context.Context, now time.Time) ([]domain.Spot, error) {
	query := `
SELECT s.id, s.label, s.description, s.latitude, s.longitude, s.created_at, ` +
		fmt.Sprintf(availableExpr, 1, 1) + `
FROM spots s
ORDER BY s.label, s.id`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	defer rows.Close()

	var out []domain.Spot
	for rows.Next() {
		var s domain.Spot
		if err := rows.Scan(&s.ID, &s.Label, &s.Description, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.Available); err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
