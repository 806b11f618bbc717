package http

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/app"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

const testSecret = "handler-test-secret"

// Stubs let each handler test pin down exactly the service behavior it
// needs; unset functions return zero values.

type stubBookingAPI struct {
	create func(ctx context.Context, in app.CreateBookingInput) (domain.Booking, error)
	list   func(ctx context.Context, userID string) ([]domain.Booking, error)
}

func (s stubBookingAPI) CreateBooking(ctx context.Context, in app.CreateBookingInput) (domain.Booking, error) {
	if s.create == nil {
		return domain.Booking{}, nil
	}
	return s.create(ctx, in)
}

func (s stubBookingAPI) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx, userID)
}

type stubLifecycleAPI struct {
	cancel func(ctx context.Context, bookingID, requestedBy string) (domain.Booking, error)
	delete func(ctx context.Context, bookingID, requestedBy string) error
}

func (s stubLifecycleAPI) Cancel(ctx context.Context, bookingID, requestedBy string) (domain.Booking, error) {
	if s.cancel == nil {
		return domain.Booking{}, nil
	}
	return s.cancel(ctx, bookingID, requestedBy)
}

func (s stubLifecycleAPI) Delete(ctx context.Context, bookingID, requestedBy string) error {
	if s.delete == nil {
		return nil
	}
	return s.delete(ctx, bookingID, requestedBy)
}

type stubWalletAPI struct {
	balance      func(ctx context.Context, userID string) (domain.Cents, error)
	credit       func(ctx context.Context, userID string, amount domain.Cents, description, bookingID string) (domain.WalletTransaction, error)
	transactions func(ctx context.Context, userID string) ([]domain.WalletTransaction, error)
}

func (s stubWalletAPI) Balance(ctx context.Context, userID string) (domain.Cents, error) {
	if s.balance == nil {
		return 0, nil
	}
	return s.balance(ctx, userID)
}

func (s stubWalletAPI) Credit(ctx context.Context, userID string, amount domain.Cents, description, bookingID string) (domain.WalletTransaction, error) {
	if s.credit == nil {
		return domain.WalletTransaction{}, nil
	}
	return s.credit(ctx, userID, amount, description, bookingID)
}

func (s stubWalletAPI) Transactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	if s.transactions == nil {
		return nil, nil
	}
	return s.transactions(ctx, userID)
}

type stubSpotAPI struct {
	create func(ctx context.Context, in app.CreateSpotInput) (domain.Spot, error)
	get    func(ctx context.Context, spotID string) (domain.Spot, error)
	list   func(ctx context.Context) ([]domain.Spot, error)
}

func (s stubSpotAPI) CreateSpot(ctx context.Context, in app.CreateSpotInput) (domain.Spot, error) {
	if s.create == nil {
		return domain.Spot{}, nil
	}
	return s.create(ctx, in)
}

func (s stubSpotAPI) GetSpot(ctx context.Context, spotID string) (domain.Spot, error) {
	if s.get == nil {
		return domain.Spot{}, nil
	}
	return s.get(ctx, spotID)
}

func (s stubSpotAPI) ListSpots(ctx context.Context) ([]domain.Spot, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx)
}

type stubAvailabilityAPI struct {
	check func(ctx context.Context, spotID string, start, end time.Time) (bool, error)
}

func (s stubAvailabilityAPI) CheckAvailable(ctx context.Context, spotID string, start, end time.Time) (bool, error) {
	if s.check == nil {
		return true, nil
	}
	return s.check(ctx, spotID, start, end)
}

type stubPaymentMethodAPI struct {
	list   func(ctx context.Context, userID string) ([]domain.SavedPaymentMethod, error)
	delete func(ctx context.Context, userID, id string) error
}

func (s stubPaymentMethodAPI) List(ctx context.Context, userID string) ([]domain.SavedPaymentMethod, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx, userID)
}

func (s stubPaymentMethodAPI) Delete(ctx context.Context, userID, id string) error {
	if s.delete == nil {
		return nil
	}
	return s.delete(ctx, userID, id)
}

func newTestRouter(cfg RouterConfig) http.Handler {
	if cfg.Bookings == nil {
		cfg.Bookings = stubBookingAPI{}
	}
	if cfg.Lifecycle == nil {
		cfg.Lifecycle = stubLifecycleAPI{}
	}
	if cfg.Wallet == nil {
		cfg.Wallet = stubWalletAPI{}
	}
	if cfg.Spots == nil {
		cfg.Spots = stubSpotAPI{}
	}
	if cfg.Availability == nil {
		cfg.Availability = stubAvailabilityAPI{}
	}
	if cfg.PaymentMethods == nil {
		cfg.PaymentMethods = stubPaymentMethodAPI{}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		cfg.Logger = logger
	}
	return NewRouter(cfg)
}

func bearerToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}
