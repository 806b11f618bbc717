package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smart_parking",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "smart_parking",
		Name:      "bookings_created_total",
		Help:      "Bookings confirmed and committed.",
	})

	bookingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smart_parking",
		Name:      "booking_failures_total",
		Help:      "Failed booking attempts by error code.",
	}, []string{"reason"})

	walletDeposits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "smart_parking",
		Name:      "wallet_deposits_total",
		Help:      "Wallet credit operations accepted over HTTP.",
	})
)

func observeRequest(method string, status int, d time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
