package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/app"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/clock"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/config"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/storage/postgres"
	transporthttp "github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/transport/http"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}

	clk := clock.NewSystem()

	ledger := app.NewLedgerService(postgres.NewLedgerRepository(pool), clk)
	methods := app.NewPaymentMethodService(postgres.NewPaymentMethodRepository(pool), clk)
	bookings := app.NewBookingService(postgres.NewBookingRepository(pool), ledger, app.SandboxCharger{}, methods, clk, logger)
	lifecycle := app.NewLifecycleService(postgres.NewLifecycleRepository(pool), clk, logger)
	spots := app.NewSpotService(postgres.NewSpotRepository(pool), clk)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go lifecycle.Run(sweepCtx, cfg.SweepInterval)

	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Bookings:       bookings,
		Lifecycle:      lifecycle,
		Wallet:         ledger,
		Spots:          spots,
		Availability:   bookings,
		PaymentMethods: methods,
		JWTSecret:      cfg.JWTSecret,
		CORSOrigins:    parseCSV(cfg.CORSOrigins),
		Logger:         logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("server shutdown error")
	}
	logger.Info("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
