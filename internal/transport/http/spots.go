package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/app"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

// SpotAPI is the directory/discovery surface.
type SpotAPI interface {
	CreateSpot(ctx context.Context, in app.CreateSpotInput) (domain.Spot, error)
	GetSpot(ctx context.Context, spotID string) (domain.Spot, error)
	ListSpots(ctx context.Context) ([]domain.Spot, error)
}

// AvailabilityAPI answers window probes against the active booking set.
type AvailabilityAPI interface {
	CheckAvailable(ctx context.Context, spotID string, start, end time.Time) (bool, error)
}

type spotResponse struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

func toSpotResponse(s domain.Spot) spotResponse {
	return spotResponse{
		ID:          s.ID,
		Label:       s.Label,
		Description: s.Description,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		Available:   s.Available,
		CreatedAt:   s.CreatedAt,
	}
}

type createSpotRequest struct {
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// HandleCreateSpot is the provisioning endpoint for the spot directory
// collaborator.
func HandleCreateSpot(svc SpotAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSpotRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Label == "" {
			writeError(w, http.StatusBadRequest, codeSpotLabelRequired, "label is required")
			return
		}

		spot, err := svc.CreateSpot(r.Context(), app.CreateSpotInput{
			Label:       req.Label,
			Description: req.Description,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSpotResponse(spot))
	}
}

// HandleListSpots lists spots with the derived availability flag.
func HandleListSpots(svc SpotAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spots, err := svc.ListSpots(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]spotResponse, 0, len(spots))
		for _, s := range spots {
			out = append(out, toSpotResponse(s))
		}
		writeJSON(w, http.StatusOK, map[string]any{"spots": out})
	}
}

// HandleGetSpot returns one spot with its derived availability.
func HandleGetSpot(svc SpotAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spot, err := svc.GetSpot(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSpotResponse(spot))
	}
}

// HandleSpotAvailability probes a [start, end) window on a spot.
func HandleSpotAvailability(svc AvailabilityAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidWindow, "start must be RFC 3339")
			return
		}
		end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidWindow, "end must be RFC 3339")
			return
		}

		available, err := svc.CheckAvailable(r.Context(), chi.URLParam(r, "id"), start, end)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"available": available})
	}
}
