package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouterConfig bundles the services and settings the HTTP surface needs.
type RouterConfig struct {
	Bookings       BookingAPI
	Lifecycle      LifecycleAPI
	Wallet         WalletAPI
	Spots          SpotAPI
	Availability   AvailabilityAPI
	PaymentMethods PaymentMethodAPI

	JWTSecret   string
	CORSOrigins []string
	Logger      logrus.FieldLogger
}

// NewRouter mounts all routes. Authenticated routes read the user id from
// the verified bearer token; the spot provisioning route is the trusted
// directory boundary and stays open.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/spots", HandleListSpots(cfg.Spots))
	r.Post("/spots", HandleCreateSpot(cfg.Spots))
	r.Get("/spots/{id}", HandleGetSpot(cfg.Spots))
	r.Get("/spots/{id}/availability", HandleSpotAvailability(cfg.Availability))

	r.Group(func(r chi.Router) {
		r.Use(RequireUser(cfg.JWTSecret))

		r.Post("/bookings", HandleCreateBooking(cfg.Bookings))
		r.Get("/bookings", HandleListBookings(cfg.Bookings))
		r.Post("/bookings/{id}/cancel", HandleCancelBooking(cfg.Lifecycle))
		r.Delete("/bookings/{id}", HandleDeleteBooking(cfg.Lifecycle))

		r.Get("/wallet", HandleGetWallet(cfg.Wallet))
		r.Post("/wallet/deposits", HandleDeposit(cfg.Wallet))
		r.Get("/wallet/transactions", HandleListTransactions(cfg.Wallet))

		r.Get("/payment-methods", HandleListPaymentMethods(cfg.PaymentMethods))
		r.Delete("/payment-methods/{id}", HandleDeletePaymentMethod(cfg.PaymentMethods))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})

	return RequestLogger(CORS(cfg.CORSOrigins, r), cfg.Logger)
}
