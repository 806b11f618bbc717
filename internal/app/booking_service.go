package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/clock"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetSpot(ctx context.Context, spotID string) (domain.Spot, error)
	// GetSpotForUpdate locks the spot row; the per-spot critical section for
	// check-then-reserve hangs off this lock.
	GetSpotForUpdate(ctx context.Context, spotID string) (domain.Spot, error)
	// HasOverlap reports whether any pending/confirmed booking for the spot
	// overlaps [start, end).
	HasOverlap(ctx context.Context, spotID string, start, end time.Time) (bool, error)
	CreateBooking(ctx context.Context, b domain.Booking) error
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

// BookingService turns a booking request into a priced, paid, reserved
// booking, or fails cleanly with no side effects. Payment settles before the
// spot lock is taken, so the two critical sections are never held together;
// a racer that paid but lost the re-check is compensated before the error
// returns.
type BookingService struct {
	repo    BookingRepository
	ledger  *LedgerService
	charger CardCharger
	methods *PaymentMethodService
	clock   clock.Clock
	log     logrus.FieldLogger
}

func NewBookingService(repo BookingRepository, ledger *LedgerService, charger CardCharger, methods *PaymentMethodService, clk clock.Clock, log logrus.FieldLogger) *BookingService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingService{
		repo:    repo,
		ledger:  ledger,
		charger: charger,
		methods: methods,
		clock:   clk,
		log:     log,
	}
}

type CreateBookingInput struct {
	UserID    string
	SpotID    string
	Start     time.Time
	End       time.Time
	Payment   domain.PaymentKind
	CardToken string
	SaveCard  bool
	Card      *CardMetadata
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	now := s.clock.Now()
	start, end := in.Start.UTC(), in.End.UTC()

	if err := domain.ValidateWindow(now, start, end); err != nil {
		return domain.Booking{}, err
	}
	if in.Payment != domain.PaymentWallet && in.Payment != domain.PaymentCard {
		return domain.Booking{}, fmt.Errorf("unsupported payment kind %q", in.Payment)
	}

	spot, err := s.repo.GetSpot(ctx, in.SpotID)
	if err != nil {
		return domain.Booking{}, err
	}
	price := domain.PriceFor(start, end)

	// Read-only pre-check so an obviously taken window never reaches the
	// payment step.
	conflict, err := s.repo.HasOverlap(ctx, spot.ID, start, end)
	if err != nil {
		return domain.Booking{}, err
	}
	if conflict {
		return domain.Booking{}, domain.ErrSpotUnavailable
	}

	booking := domain.Booking{
		ID:        newUUID(),
		UserID:    in.UserID,
		SpotID:    spot.ID,
		Start:     start,
		End:       end,
		Price:     price,
		Payment:   in.Payment,
		Status:    domain.BookingStatusConfirmed,
		CreatedAt: now,
	}

	// Payment first: only this user's ledger is touched, no spot lock held.
	var chargeID string
	switch in.Payment {
	case domain.PaymentWallet:
		desc := fmt.Sprintf("Parking at %s (%s - %s)", spot.Label, start.Format(time.RFC3339), end.Format(time.RFC3339))
		if _, err := s.ledger.Debit(ctx, in.UserID, price, desc, booking.ID); err != nil {
			return domain.Booking{}, err
		}
	case domain.PaymentCard:
		id, err := s.charger.Charge(ctx, in.UserID, price, in.CardToken)
		if err != nil {
			if errors.Is(err, domain.ErrPaymentDeclined) {
				return domain.Booking{}, err
			}
			return domain.Booking{}, fmt.Errorf("%w: %v", domain.ErrPaymentDeclined, err)
		}
		chargeID = id
	}

	// The one critical section: spot row lock, overlap re-check, insert.
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetSpotForUpdate(txCtx, spot.ID); err != nil {
			return err
		}
		conflict, err := s.repo.HasOverlap(txCtx, spot.ID, start, end)
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrSpotUnavailable
		}
		return s.repo.CreateBooking(txCtx, booking)
	})
	if err != nil {
		return domain.Booking{}, s.compensate(ctx, booking, chargeID, err)
	}

	if in.Payment == domain.PaymentCard && in.SaveCard && in.Card != nil && s.methods != nil {
		if _, err := s.methods.Save(ctx, in.UserID, *in.Card); err != nil {
			s.log.WithError(err).WithField("user_id", in.UserID).Warn("failed to save card metadata")
		}
	}
	return booking, nil
}

// compensate unwinds a settled payment after the reserve step failed. The
// wallet path refunds; the card path can only be reconciled by an operator.
func (s *BookingService) compensate(ctx context.Context, booking domain.Booking, chargeID string, cause error) error {
	switch booking.Payment {
	case domain.PaymentWallet:
		desc := fmt.Sprintf("Refund: booking %s not committed", booking.ID)
		if _, err := s.ledger.Credit(ctx, booking.UserID, booking.Price, desc, booking.ID); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"user_id":    booking.UserID,
				"amount":     booking.Price,
			}).Error("wallet refund failed; operator intervention required")
			return fmt.Errorf("%w: wallet refund of %d failed: %v (cause: %v)", domain.ErrReconciliationRequired, booking.Price, err, cause)
		}
		return cause
	case domain.PaymentCard:
		fields := logrus.Fields{
			"booking_id": booking.ID,
			"user_id":    booking.UserID,
			"charge_id":  chargeID,
			"amount":     booking.Price,
		}
		if errors.Is(cause, domain.ErrSpotUnavailable) {
			// Lost the race after the charge settled. The slot answer is
			// still "unavailable"; the charge needs a manual refund.
			s.log.WithFields(fields).Error("card charge settled for a lost reservation race; manual refund required")
			return cause
		}
		s.log.WithError(cause).WithFields(fields).Error("card charge settled but booking commit failed")
		return fmt.Errorf("%w: charge %s: %v", domain.ErrReconciliationRequired, chargeID, cause)
	}
	return cause
}

// CheckAvailable answers whether [start, end) is free on the spot. Half-open
// windows: a booking ending exactly at start does not conflict.
func (s *BookingService) CheckAvailable(ctx context.Context, spotID string, start, end time.Time) (bool, error) {
	if _, err := s.repo.GetSpot(ctx, spotID); err != nil {
		return false, err
	}
	conflict, err := s.repo.HasOverlap(ctx, spotID, start.UTC(), end.UTC())
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// ListUserBookings returns the caller's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.repo.ListUserBookings(ctx, userID)
}
