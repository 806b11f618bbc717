package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

// WalletAPI is the ledger surface exposed over HTTP.
type WalletAPI interface {
	Balance(ctx context.Context, userID string) (domain.Cents, error)
	Credit(ctx context.Context, userID string, amount domain.Cents, description, bookingID string) (domain.WalletTransaction, error)
	Transactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error)
}

// HandleGetWallet returns the caller's balance.
func HandleGetWallet(svc WalletAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := svc.Balance(r.Context(), userIDFromContext(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"balance_cents": int64(balance)})
	}
}

type depositRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// HandleDeposit credits the caller's wallet.
func HandleDeposit(svc WalletAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req depositRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		txn, err := svc.Credit(r.Context(), userIDFromContext(r.Context()), domain.Cents(req.AmountCents), "Wallet top-up", "")
		if err != nil {
			writeDomainError(w, err)
			return
		}
		walletDeposits.Inc()
		writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
	}
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount_cents"`
	Description string    `json:"description"`
	BookingID   string    `json:"booking_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionResponse(t domain.WalletTransaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      int64(t.Amount),
		Description: t.Description,
		BookingID:   t.BookingID,
		CreatedAt:   t.CreatedAt,
	}
}

// HandleListTransactions returns the caller's ledger history, newest first.
func HandleListTransactions(svc WalletAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txns, err := svc.Transactions(r.Context(), userIDFromContext(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]transactionResponse, 0, len(txns))
		for _, t := range txns {
			out = append(out, toTransactionResponse(t))
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
	}
}
