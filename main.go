package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"teamcap/config"
	"teamcap/database"
	"teamcap/handlers"
	"teamcap/logger"
	"teamcap/mailer"
	"teamcap/middleware"
	"teamcap/models"
	"teamcap/tracker"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	err = database.Init(cfg.DatabaseURL, database.SeedDefaults{
		PaceFactor:         cfg.PaceFactor,
		WorkingHoursPerDay: cfg.WorkingHoursPerDay,
		WorkingDaysPerWeek: cfg.WorkingDaysPerWeek,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ticket-tracker polling cache, refreshed in the background when
	// configured
	trackerCache := &tracker.Cache{}
	if cfg.Tracker.BaseURL != "" {
		fetcher := &tracker.HTTPFetcher{BaseURL: cfg.Tracker.BaseURL, Token: cfg.Tracker.Token}
		poller := tracker.NewPoller(trackerCache, fetcher, cfg.Tracker.PollInterval, log)
		go poller.Run(ctx)
		log.Info().Str("base_url", cfg.Tracker.BaseURL).Msg("tracker polling started")
	}

	notifier := mailer.New(cfg.SMTP, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	userHandler := handlers.NewUserHandler(cfg, log)
	settingsHandler := handlers.NewSettingsHandler(cfg, log)
	capacityHandler := handlers.NewCapacityHandler(cfg, log)
	timeOffHandler := handlers.NewTimeOffHandler(cfg, log, notifier)
	trackerHandler := handlers.NewTrackerHandler(trackerCache)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(log))
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Post("/login", authHandler.Login)
	router.Get("/capacity/team-overview", capacityHandler.TeamOverview)
	router.Get("/time-off/calendar", timeOffHandler.Calendar)
	router.Get("/time-off/dashboard/pending-count", timeOffHandler.PendingCount)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/change-password", authHandler.ChangePassword)

		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Update)

		r.Get("/capacity/allocations", capacityHandler.ListAllocations)
		r.Put("/capacity/allocations/{userID}/{weekStart}", capacityHandler.UpsertAllocation)
		r.Post("/capacity/copy-from-previous-week", capacityHandler.CopyFromPreviousWeek)
		r.Get("/capacity/export", capacityHandler.ExportJSON)
		r.Get("/capacity/export-excel", capacityHandler.ExportExcel)

		r.Get("/time-off", timeOffHandler.List)
		r.Post("/time-off", timeOffHandler.Create)
		r.Put("/time-off/{requestID}", timeOffHandler.Decide)
		r.Post("/time-off/{requestID}/cancel", timeOffHandler.Cancel)
		r.Delete("/time-off/{requestID}", timeOffHandler.Delete)
		r.Post("/time-off/admin/create-holiday", timeOffHandler.CreateHoliday)

		r.Get("/tracker/tickets", trackerHandler.Tickets)

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/users", userHandler.List)
			r.Post("/users", userHandler.Create)
			r.Put("/users/{userID}", userHandler.Update)
			r.Delete("/users/{userID}", userHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		srv.Shutdown(context.Background())
	}()

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
