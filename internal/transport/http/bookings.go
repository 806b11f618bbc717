package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/app"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

// BookingAPI is the slice of the booking engine the handlers need.
type BookingAPI interface {
	CreateBooking(ctx context.Context, in app.CreateBookingInput) (domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

// LifecycleAPI covers user-initiated booking transitions.
type LifecycleAPI interface {
	Cancel(ctx context.Context, bookingID, requestedBy string) (domain.Booking, error)
	Delete(ctx context.Context, bookingID, requestedBy string) error
}

type cardRequest struct {
	Brand       string `json:"brand"`
	Last4       string `json:"last4"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	HolderName  string `json:"holder_name"`
}

type createBookingRequest struct {
	SpotID    string       `json:"spot_id"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Payment   string       `json:"payment"`
	CardToken string       `json:"card_token"`
	SaveCard  bool         `json:"save_card"`
	Card      *cardRequest `json:"card"`
}

func (r createBookingRequest) validate() error {
	if r.SpotID == "" {
		return errors.New("spot_id is required")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("start and end are required")
	}
	if r.Payment != string(domain.PaymentWallet) && r.Payment != string(domain.PaymentCard) {
		return errors.New("payment must be wallet or card")
	}
	if r.Payment == string(domain.PaymentCard) && r.CardToken == "" {
		return errors.New("card_token is required for card payment")
	}
	return nil
}

type bookingResponse struct {
	ID        string    `json:"id"`
	SpotID    string    `json:"spot_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Price     int64     `json:"price_cents"`
	Payment   string    `json:"payment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		SpotID:    b.SpotID,
		Start:     b.Start,
		End:       b.End,
		Price:     int64(b.Price),
		Payment:   string(b.Payment),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

// HandleCreateBooking returns the handler for creating bookings.
func HandleCreateBooking(svc BookingAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}

		in := app.CreateBookingInput{
			UserID:    userIDFromContext(r.Context()),
			SpotID:    req.SpotID,
			Start:     req.Start,
			End:       req.End,
			Payment:   domain.PaymentKind(req.Payment),
			CardToken: req.CardToken,
			SaveCard:  req.SaveCard,
		}
		if req.Card != nil {
			in.Card = &app.CardMetadata{
				Brand:       req.Card.Brand,
				Last4:       req.Card.Last4,
				ExpiryMonth: req.Card.ExpiryMonth,
				ExpiryYear:  req.Card.ExpiryYear,
				HolderName:  req.Card.HolderName,
			}
		}

		booking, err := svc.CreateBooking(r.Context(), in)
		if err != nil {
			bookingFailures.WithLabelValues(failureReason(err)).Inc()
			writeDomainError(w, err)
			return
		}

		bookingsCreated.Inc()
		writeJSON(w, http.StatusCreated, toBookingResponse(booking))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow):
		return codeInvalidWindow
	case errors.Is(err, domain.ErrSpotUnavailable):
		return codeSpotUnavailable
	case errors.Is(err, domain.ErrInsufficientFunds):
		return codeInsufficientFunds
	case errors.Is(err, domain.ErrPaymentDeclined):
		return codeCardDeclined
	case errors.Is(err, domain.ErrReconciliationRequired):
		return codeReconciliationRequired
	default:
		return codeInternalError
	}
}

// HandleListBookings returns the caller's bookings.
func HandleListBookings(svc BookingAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookings, err := svc.ListUserBookings(r.Context(), userIDFromContext(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			out = append(out, toBookingResponse(b))
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
	}
}

// HandleCancelBooking cancels a confirmed booking within the allowed notice
// window.
func HandleCancelBooking(svc LifecycleAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		booking, err := svc.Cancel(r.Context(), chi.URLParam(r, "id"), userIDFromContext(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(booking))
	}
}

// HandleDeleteBooking removes a terminal booking record.
func HandleDeleteBooking(svc LifecycleAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id"), userIDFromContext(r.Context())); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
