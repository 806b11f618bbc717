package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

// PaymentMethodAPI manages a user's saved masked card metadata.
type PaymentMethodAPI interface {
	List(ctx context.Context, userID string) ([]domain.SavedPaymentMethod, error)
	Delete(ctx context.Context, userID, id string) error
}

type paymentMethodResponse struct {
	ID          string    `json:"id"`
	Brand       string    `json:"brand"`
	Last4       string    `json:"last4"`
	ExpiryMonth int       `json:"expiry_month"`
	ExpiryYear  int       `json:"expiry_year"`
	HolderName  string    `json:"holder_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// HandleListPaymentMethods lists the caller's saved cards (masked metadata
// only).
func HandleListPaymentMethods(svc PaymentMethodAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methods, err := svc.List(r.Context(), userIDFromContext(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]paymentMethodResponse, 0, len(methods))
		for _, m := range methods {
			out = append(out, paymentMethodResponse{
				ID:          m.ID,
				Brand:       m.Brand,
				Last4:       m.Last4,
				ExpiryMonth: m.ExpiryMonth,
				ExpiryYear:  m.ExpiryYear,
				HolderName:  m.HolderName,
				CreatedAt:   m.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"payment_methods": out})
	}
}

// HandleDeletePaymentMethod removes one saved card.
func HandleDeletePaymentMethod(svc PaymentMethodAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
