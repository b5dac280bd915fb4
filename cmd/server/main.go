// CollectCall - outbound loan-collection voice dialogue server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bargaj/collectcall/internal/config"
	"github.com/bargaj/collectcall/internal/dialer"
	"github.com/bargaj/collectcall/internal/dialogue"
	"github.com/bargaj/collectcall/internal/middleware"
	"github.com/bargaj/collectcall/internal/operator"
	"github.com/bargaj/collectcall/internal/session"
	"github.com/bargaj/collectcall/internal/store"
	"github.com/bargaj/collectcall/internal/telephony"
	"github.com/bargaj/collectcall/internal/transcribe"
	"github.com/bargaj/collectcall/internal/webhook"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	dir, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := dir.Close(); closeErr != nil {
			slog.Error("Failed to close borrower directory", "error", closeErr)
		}
	}()

	if err := dir.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if cfg.BorrowersCSV != "" {
		f, err := os.Open(cfg.BorrowersCSV)
		if err != nil {
			slog.Error("Failed to open borrower CSV", "path", cfg.BorrowersCSV, "error", err)
			os.Exit(1)
		}
		n, err := dir.ImportCSV(context.Background(), f)
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close borrower CSV", "error", closeErr)
		}
		if err != nil {
			slog.Error("Borrower import failed", "path", cfg.BorrowersCSV, "error", err)
			os.Exit(1)
		}
		slog.Info("Borrower import complete", "path", cfg.BorrowersCSV, "imported", n)
	}

	// Initialize services.
	registry := session.NewRegistry()
	hub := operator.NewHub()
	defer hub.Close()

	engineCfg := dialogue.DefaultEngineConfig()
	engineCfg.MaxReprompts = cfg.Dialogue.MaxReprompts
	engine := dialogue.NewEngine(registry, dir, hub, engineCfg)

	renderer := telephony.NewRenderer(cfg.Telephony.Voice, telephony.DefaultRoutes())

	// Telephony client is optional: without credentials the server still
	// answers provider webhooks but cannot place calls or pull recordings.
	var providerClient *telephony.Client
	if cfg.TelephonyEnabled() {
		providerClient, err = telephony.NewClient(telephony.ClientConfig{
			BaseURL:    cfg.Telephony.APIBaseURL,
			AccountSID: cfg.Telephony.AccountSID,
			AuthToken:  cfg.Telephony.AuthToken,
			FromNumber: cfg.Telephony.PhoneNumber,
		})
		if err != nil {
			slog.Error("Failed to initialize telephony client", "error", err)
			os.Exit(1)
		}
		slog.Info("Telephony client initialized")
	} else {
		slog.Warn("Telephony credentials not set, outbound dialing and recording fetch disabled")
	}

	// Speech-to-text sidecar is optional too; calls degrade to the
	// unresponsive closing when it is down.
	var transcriber *transcribe.GrpcClient
	grpcCfg := transcribe.DefaultGrpcClientConfig()
	grpcCfg.Address = cfg.Transcriber.Addr
	grpcCfg.LanguageHint = cfg.Transcriber.LanguageHint
	transcriber, err = transcribe.NewGrpcClient(grpcCfg, logger)
	if err != nil {
		slog.Warn("Failed to connect to transcription service, captures will not be understood", "error", err)
		transcriber = nil
	} else {
		defer transcriber.Close()
		slog.Info("Transcription service connected", "address", cfg.Transcriber.Addr)
	}

	// Avoid typed-nil collaborators behind the handler interfaces.
	var fetcher webhook.RecordingFetcher
	if providerClient != nil {
		fetcher = providerClient
	}
	var speech webhook.Transcriber
	if transcriber != nil {
		speech = transcriber
	}

	var batch webhook.BatchDialer
	var outbound *dialer.Dialer
	if providerClient != nil && cfg.PublicURL != "" {
		outbound = dialer.New(dir, providerClient, cfg.VoiceWebhookURL(), cfg.Dialer.Workers)
		batch = outbound
	}

	// Initialize handlers.
	callHandler := webhook.NewHandler(engine, renderer, fetcher, speech)
	adminHandler := webhook.NewAdminHandler(dir, batch)
	wsHandler := operator.NewWebSocketHandler(hub, []string{"*"})

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	// Provider-facing webhooks, signature-checked when credentials are set.
	r.Group(func(r chi.Router) {
		r.Use(middleware.VerifySignature(cfg.PublicURL, cfg.Telephony.AuthToken))
		callHandler.RegisterRoutes(r)
	})

	adminHandler.RegisterRoutes(r)

	// Operator console WebSocket endpoint.
	r.Get("/ws/operator", wsHandler.ServeHTTP)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start session reaper.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry.StartReaper(ctx, cfg.Dialogue.SessionTTL, cfg.Dialogue.ReapInterval, engine.ExpireIdle)
	slog.Info("Session reaper started", "session_ttl", cfg.Dialogue.SessionTTL, "interval", cfg.Dialogue.ReapInterval)

	if cfg.Dialer.DialOnStart && outbound != nil {
		go func() {
			res, err := outbound.DialAll(ctx)
			if err != nil {
				slog.Error("Startup dial batch failed", "batch_id", res.BatchID, "error", err)
				return
			}
			slog.Info("Startup dial batch complete",
				"batch_id", res.BatchID, "placed", res.Placed, "failed", res.Failed)
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
