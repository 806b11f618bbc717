package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/clock"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error
	// CompleteExpired transitions every confirmed booking whose end has
	// passed to completed and returns how many rows changed. The status
	// precondition makes it safe under concurrent invocation.
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteBooking(ctx context.Context, bookingID string) error
}

// LifecycleService keeps booking status consistent with wall-clock time and
// user cancellation requests. Canceling or completing a booking removes it
// from the non-terminal set, which is what re-opens the window.
type LifecycleService struct {
	repo  LifecycleRepository
	clock clock.Clock
	log   logrus.FieldLogger
}

func NewLifecycleService(repo LifecycleRepository, clk clock.Clock, log logrus.FieldLogger) *LifecycleService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LifecycleService{repo: repo, clock: clk, log: log}
}

// Cancel cancels a confirmed booking if at least the required notice remains
// before its start. The wallet is deliberately not refunded. Both
// closed-window reasons share ErrCancellationWindowClosed so callers branch
// on one kind while users still see the specific message.
func (s *LifecycleService) Cancel(ctx context.Context, bookingID, requestedBy string) (domain.Booking, error) {
	var result domain.Booking
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != requestedBy {
			return domain.ErrForbidden
		}
		if booking.Status != domain.BookingStatusConfirmed {
			return domain.ErrInvalidState
		}

		now := s.clock.Now()
		if !booking.Start.After(now) {
			return fmt.Errorf("%w: booking already started", domain.ErrCancellationWindowClosed)
		}
		if booking.Start.Sub(now) < domain.CancellationNotice {
			return fmt.Errorf("%w: less than %s before start", domain.ErrCancellationWindowClosed, domain.CancellationNotice)
		}

		if err := s.repo.UpdateBookingStatus(txCtx, bookingID, domain.BookingStatusCanceled); err != nil {
			return err
		}
		booking.Status = domain.BookingStatusCanceled
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// SweepExpired completes every confirmed booking whose end time has passed.
// Calling it twice in a row is a no-op the second time.
func (s *LifecycleService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.CompleteExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("completed", n).Info("expired bookings swept")
	}
	return n, nil
}

// Run sweeps on a fixed interval until ctx is canceled.
func (s *LifecycleService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				s.log.WithError(err).Error("expiry sweep failed")
			}
		}
	}
}

// Delete removes a booking record. Only terminal bookings may be deleted.
func (s *LifecycleService) Delete(ctx context.Context, bookingID, requestedBy string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != requestedBy {
			return domain.ErrForbidden
		}
		if !booking.Status.Terminal() {
			return domain.ErrInvalidState
		}
		return s.repo.DeleteBooking(txCtx, bookingID)
	})
}
