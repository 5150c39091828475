package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/salon-booking/internal/cache"
	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/logs"
	"github.com/iliyamo/salon-booking/internal/metrics"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/router"
	"github.com/iliyamo/salon-booking/internal/service"
)

func newServeCommand() *cobra.Command {
	var shutdownTimeout time.Duration
	var publish bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), shutdownTimeout, publish)
		},
	}
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "grace period for in-flight requests")
	cmd.Flags().BoolVar(&publish, "publish-events", true, "publish booking events to RabbitMQ")
	return cmd
}

func dbOptions(cfg config.Config) database.Options {
	return database.Options{
		User:     cfg.DBUser,
		Pass:     cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		Location: cfg.Location,
	}
}

func serve(parent context.Context, shutdownTimeout time.Duration, publish bool) error {
	cfg := config.Load()
	log := logs.New(cfg.Log, cfg.Env)

	db, err := database.Open(dbOptions(cfg))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	m := metrics.New()

	repos := service.NewRepos(db)
	store := service.NewSQLStore(db, repos, cfg.Salon.TxRetries)
	dir := cache.NewDirectory(rdb, config.LoadDirectoryCacheConfig(), repos.Staff, repos.Shifts, log)

	deps := service.BookingDeps{
		Store:     store,
		Bookings:  repos.Bookings,
		History:   repos.History,
		Catalog:   repos.Catalog,
		Tickets:   repos.Tickets,
		Directory: dir,
		Metrics:   m,
		Salon:     cfg.Salon,
		Log:       log,
	}
	if publish {
		deps.Events = queue.NewPublisher(config.BrokerURL(), log)
	}
	bookings := service.NewBookingService(deps)
	checkout := service.NewCheckoutService(store, repos.Catalog, repos.Tickets, bookings, m, log)
	tickets := service.NewTicketService(store, repos.Catalog, repos.Customers, cfg.Location)
	shifts := service.NewShiftService(store, repos.Shifts, repos.Staff, dir, cfg.Salon)
	staff := service.NewStaffService(store, repos.Staff, dir, cfg.Salon)
	customers := service.NewCustomerService(repos.Customers, repos.Tickets)
	ledger := service.NewLedgerService(cfg.Salon.LedgerDir, repos.Bookings, repos.Customers, log)
	analytics := service.NewAnalyticsService(repos.Analytics)

	h := router.Handlers{
		Bookings:  handler.NewBookingHandler(bookings, ledger, log),
		Catalog:   handler.NewCatalogHandler(repos.Catalog, log),
		Customers: handler.NewCustomerHandler(customers, tickets, repos.Tickets, log),
		Staff:     handler.NewStaffHandler(staff, shifts, log),
		Payments:  handler.NewPaymentHandler(checkout, repos.Payments, log),
		Analytics: handler.NewAnalyticsHandler(analytics, log),
		Health:    handler.Health(db),
	}
	g := router.Guards{
		RateLimit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewResponseCache(config.LoadCacheConfig(), rdb).Middleware(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		echomw.Recover(),
		echomw.RequestID(),
		middleware.Metrics(m),
		middleware.RequestLog(log),
	)
	if cfg.Salon.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(cfg.Salon.RequestTimeout))
	}
	router.Register(e, h, g, m)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("http: listening", "addr", addr, "beds", cfg.Salon.Beds)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("http: shutting down", "timeout", shutdownTimeout)
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Events of the last requests are still in flight.
	bookings.Wait()
	return nil
}
