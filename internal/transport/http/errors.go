package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

const (
	codeNotFound               = "not_found"
	codeUnauthorized           = "unauthorized"
	codeForbidden              = "forbidden"
	codeInvalidRequestBody     = "invalid_request_body"
	codeInvalidWindow          = "invalid_window"
	codeInvalidID              = "invalid_id"
	codeInvalidAmount          = "invalid_amount"
	codeInvalidCardMetadata    = "invalid_card_metadata"
	codeSpotLabelRequired      = "spot_label_required"
	codeSpotNotFound           = "spot_not_found"
	codeSpotUnavailable        = "spot_unavailable"
	codeBookingNotFound        = "booking_not_found"
	codeInsufficientFunds      = "insufficient_funds"
	codeCardDeclined           = "card_declined"
	codeCancellationClosed     = "cancellation_window_closed"
	codeInvalidState           = "invalid_state"
	codePaymentMethodNotFound  = "payment_method_not_found"
	codeReconciliationRequired = "reconciliation_required"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps each domain error kind to one distinct status, code,
// and message. Wrapped detail (e.g. which cancellation rule closed the
// window) rides along in the message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, codeInvalidWindow, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrInvalidCardMetadata):
		writeError(w, http.StatusBadRequest, codeInvalidCardMetadata, err.Error())
	case errors.Is(err, domain.ErrSpotNotFound):
		writeError(w, http.StatusNotFound, codeSpotNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrPaymentMethodNotFound):
		writeError(w, http.StatusNotFound, codePaymentMethodNotFound, err.Error())
	case errors.Is(err, domain.ErrSpotUnavailable):
		writeError(w, http.StatusConflict, codeSpotUnavailable, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, codeInsufficientFunds, err.Error())
	case errors.Is(err, domain.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, codeCardDeclined, err.Error())
	case errors.Is(err, domain.ErrCancellationWindowClosed):
		writeError(w, http.StatusConflict, codeCancellationClosed, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, codeInvalidState, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrReconciliationRequired):
		writeError(w, http.StatusInternalServerError, codeReconciliationRequired, domain.ErrReconciliationRequired.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
