package app

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

// The fakes serialize WithTx on a dedicated mutex and roll state back on
// error, mirroring the transactional repositories closely enough for the
// race and compensation tests to be meaningful.

type fakeLedgerRepo struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	wallets map[string]domain.Wallet
	txns    []domain.WalletTransaction

	// creditAppendErr makes credit appends fail, to exercise the
	// refund-failure path.
	creditAppendErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{wallets: make(map[string]domain.Wallet)}
}

func (f *fakeLedgerRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	walletsSnap := maps.Clone(f.wallets)
	txnsSnap := slices.Clone(f.txns)
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.wallets = walletsSnap
		f.txns = txnsSnap
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeLedgerRepo) GetWalletForUpdate(_ context.Context, userID string) (domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		w = domain.Wallet{UserID: userID}
		f.wallets[userID] = w
	}
	return w, nil
}

func (f *fakeLedgerRepo) UpdateBalance(_ context.Context, userID string, balance domain.Cents) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.wallets[userID]
	w.UserID = userID
	w.Balance = balance
	f.wallets[userID] = w
	return nil
}

func (f *fakeLedgerRepo) AppendTransaction(_ context.Context, txn domain.WalletTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if txn.Amount > 0 && f.creditAppendErr != nil {
		return f.creditAppendErr
	}
	f.txns = append(f.txns, txn)
	return nil
}

func (f *fakeLedgerRepo) GetBalance(_ context.Context, userID string) (domain.Cents, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallets[userID].Balance, nil
}

func (f *fakeLedgerRepo) ListTransactions(_ context.Context, userID string) ([]domain.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WalletTransaction
	for i := len(f.txns) - 1; i >= 0; i-- {
		if f.txns[i].UserID == userID {
			out = append(out, f.txns[i])
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) SumTransactions(_ context.Context, userID string) (domain.Cents, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum domain.Cents
	for _, t := range f.txns {
		if t.UserID == userID {
			sum += t.Amount
		}
	}
	return sum, nil
}

type fakeBookingRepo struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	spots    map[string]domain.Spot
	bookings map[string]domain.Booking

	// createErr simulates a persistence failure after payment settled.
	createErr error
}

func newFakeBookingRepo(spots []domain.Spot, bookings []domain.Booking) *fakeBookingRepo {
	f := &fakeBookingRepo{
		spots:    make(map[string]domain.Spot),
		bookings: make(map[string]domain.Booking),
	}
	for _, s := range spots {
		f.spots[s.ID] = s
	}
	for _, b := range bookings {
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeBookingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snap := maps.Clone(f.bookings)
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.bookings = snap
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeBookingRepo) GetSpot(_ context.Context, spotID string) (domain.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spots[spotID]
	if !ok {
		return domain.Spot{}, domain.ErrSpotNotFound
	}
	return s, nil
}

func (f *fakeBookingRepo) GetSpotForUpdate(ctx context.Context, spotID string) (domain.Spot, error) {
	return f.GetSpot(ctx, spotID)
}

func (f *fakeBookingRepo) HasOverlap(_ context.Context, spotID string, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.SpotID != spotID || b.Status.Terminal() {
			continue
		}
		if domain.Overlaps(start, end, b.Start, b.End) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) CreateBooking(_ context.Context, b domain.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.bookings[b.ID]; exists {
		return fmt.Errorf("duplicate booking id %s", b.ID)
	}
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) ListUserBookings(_ context.Context, userID string) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (f *fakeBookingRepo) activeBookings(spotID string) []domain.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.SpotID == spotID && !b.Status.Terminal() {
			out = append(out, b)
		}
	}
	return out
}

type fakeLifecycleRepo struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	bookings map[string]domain.Booking
}

func newFakeLifecycleRepo(bookings ...domain.Booking) *fakeLifecycleRepo {
	f := &fakeLifecycleRepo{bookings: make(map[string]domain.Booking)}
	for _, b := range bookings {
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeLifecycleRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snap := maps.Clone(f.bookings)
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.bookings = snap
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeLifecycleRepo) GetBookingForUpdate(_ context.Context, bookingID string) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeLifecycleRepo) UpdateBookingStatus(_ context.Context, bookingID string, status domain.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	f.bookings[bookingID] = b
	return nil
}

func (f *fakeLifecycleRepo) CompleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, b := range f.bookings {
		if b.Status == domain.BookingStatusConfirmed && !b.End.After(now) {
			b.Status = domain.BookingStatusCompleted
			f.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (f *fakeLifecycleRepo) DeleteBooking(_ context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[bookingID]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(f.bookings, bookingID)
	return nil
}

func (f *fakeLifecycleRepo) get(id string) (domain.Booking, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	return b, ok
}

type fakeSpotRepo struct {
	mu       sync.Mutex
	spots    map[string]domain.Spot
	bookings []domain.Booking
}

func newFakeSpotRepo(bookings ...domain.Booking) *fakeSpotRepo {
	return &fakeSpotRepo{spots: make(map[string]domain.Spot), bookings: bookings}
}

func (f *fakeSpotRepo) CreateSpot(_ context.Context, spot domain.Spot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spots[spot.ID] = spot
	return nil
}

func (f *fakeSpotRepo) GetSpotAt(_ context.Context, spotID string, now time.Time) (domain.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spots[spotID]
	if !ok {
		return domain.Spot{}, domain.ErrSpotNotFound
	}
	s.Available = f.availableAt(spotID, now)
	return s, nil
}

func (f *fakeSpotRepo) ListSpotsAt(_ context.Context, now time.Time) ([]domain.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Spot
	for _, s := range f.spots {
		s.Available = f.availableAt(s.ID, now)
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSpotRepo) availableAt(spotID string, now time.Time) bool {
	for _, b := range f.bookings {
		if b.SpotID == spotID && !b.Status.Terminal() && b.Start.Before(now) && b.End.After(now) {
			return false
		}
	}
	return true
}

type fakePaymentMethodRepo struct {
	mu      sync.Mutex
	methods []domain.SavedPaymentMethod
}

func (f *fakePaymentMethodRepo) CreatePaymentMethod(_ context.Context, m domain.SavedPaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, m)
	return nil
}

func (f *fakePaymentMethodRepo) ListPaymentMethods(_ context.Context, userID string) ([]domain.SavedPaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SavedPaymentMethod
	for _, m := range f.methods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakePaymentMethodRepo) DeletePaymentMethod(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.methods {
		if m.UserID == userID && m.ID == id {
			f.methods = append(f.methods[:i], f.methods[i+1:]...)
			return nil
		}
	}
	return domain.ErrPaymentMethodNotFound
}

type fakeCharger struct {
	mu      sync.Mutex
	err     error
	charges int
}

func (f *fakeCharger) Charge(_ context.Context, _ string, _ domain.Cents, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.charges++
	return fmt.Sprintf("charge-%d", f.charges), nil
}
