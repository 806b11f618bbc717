package app

import (
	"context"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/clock"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

// CardCharger is the external payment capability for the card path. A charge
// either settles (returning an opaque charge id) or fails with
// domain.ErrPaymentDeclined. Retries, if any, belong to the other side of
// this boundary.
type CardCharger interface {
	Charge(ctx context.Context, userID string, amount domain.Cents, cardToken string) (string, error)
}

// SandboxCharger approves every charge carrying a card token. It stands in
// for the real payment network in development and tests.
type SandboxCharger struct{}

func (SandboxCharger) Charge(_ context.Context, _ string, _ domain.Cents, cardToken string) (string, error) {
	if cardToken == "" {
		return "", domain.ErrPaymentDeclined
	}
	return "sandbox-" + newUUID(), nil
}

type PaymentMethodRepository interface {
	CreatePaymentMethod(ctx context.Context, m domain.SavedPaymentMethod) error
	ListPaymentMethods(ctx context.Context, userID string) ([]domain.SavedPaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id string) error
}

// CardMetadata is the masked subset of card data this core is allowed to
// keep. Full numbers and CVVs never reach it.
type CardMetadata struct {
	Brand       string
	Last4       string
	ExpiryMonth int
	ExpiryYear  int
	HolderName  string
}

func (m CardMetadata) validate() error {
	if m.Brand == "" || m.HolderName == "" {
		return domain.ErrInvalidCardMetadata
	}
	if len(m.Last4) != 4 {
		return domain.ErrInvalidCardMetadata
	}
	for _, r := range m.Last4 {
		if r < '0' || r > '9' {
			return domain.ErrInvalidCardMetadata
		}
	}
	if m.ExpiryMonth < 1 || m.ExpiryMonth > 12 || m.ExpiryYear < 2000 {
		return domain.ErrInvalidCardMetadata
	}
	return nil
}

// PaymentMethodService stores masked card metadata saved on explicit user
// opt-in during a successful card payment.
type PaymentMethodService struct {
	repo  PaymentMethodRepository
	clock clock.Clock
}

func NewPaymentMethodService(repo PaymentMethodRepository, clk clock.Clock) *PaymentMethodService {
	return &PaymentMethodService{repo: repo, clock: clk}
}

func (s *PaymentMethodService) Save(ctx context.Context, userID string, meta CardMetadata) (domain.SavedPaymentMethod, error) {
	if err := meta.validate(); err != nil {
		return domain.SavedPaymentMethod{}, err
	}
	m := domain.SavedPaymentMethod{
		ID:          newUUID(),
		UserID:      userID,
		Brand:       meta.Brand,
		Last4:       meta.Last4,
		ExpiryMonth: meta.ExpiryMonth,
		ExpiryYear:  meta.ExpiryYear,
		HolderName:  meta.HolderName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreatePaymentMethod(ctx, m); err != nil {
		return domain.SavedPaymentMethod{}, err
	}
	return m, nil
}

func (s *PaymentMethodService) List(ctx context.Context, userID string) ([]domain.SavedPaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, userID)
}

func (s *PaymentMethodService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeletePaymentMethod(ctx, userID, id)
}
