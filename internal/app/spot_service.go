package app

import (
	"context"
	"errors"
	"time"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/clock"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

type SpotRepository interface {
	CreateSpot(ctx context.Context, spot domain.Spot) error
	// GetSpotAt and ListSpotsAt evaluate the derived availability flag
	// against the non-terminal booking set at the given instant.
	GetSpotAt(ctx context.Context, spotID string, now time.Time) (domain.Spot, error)
	ListSpotsAt(ctx context.Context, now time.Time) ([]domain.Spot, error)
}

// SpotService is the boundary to the spot directory: provisioning writes
// from the directory collaborator, discovery reads for users. Availability
// is always computed from bookings, never stored.
type SpotService struct {
	repo  SpotRepository
	clock clock.Clock
}

func NewSpotService(repo SpotRepository, clk clock.Clock) *SpotService {
	return &SpotService{repo: repo, clock: clk}
}

type CreateSpotInput struct {
	Label       string
	Description string
	Latitude    float64
	Longitude   float64
}

func (s *SpotService) CreateSpot(ctx context.Context, in CreateSpotInput) (domain.Spot, error) {
	if in.Label == "" {
		return domain.Spot{}, errors.New("spot label is required")
	}
	spot := domain.Spot{
		ID:          newUUID(),
		Label:       in.Label,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Available:   true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateSpot(ctx, spot); err != nil {
		return domain.Spot{}, err
	}
	return spot, nil
}

func (s *SpotService) GetSpot(ctx context.Context, spotID string) (domain.Spot, error) {
	return s.repo.GetSpotAt(ctx, spotID, s.clock.Now())
}

func (s *SpotService) ListSpots(ctx context.Context) ([]domain.Spot, error) {
	return s.repo.ListSpotsAt(ctx, s.clock.Now())
}
