package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aptledger/internal/amqp"
	"aptledger/internal/auth"
	"aptledger/internal/backend"
	"aptledger/internal/cli"
	apphttp "aptledger/internal/http"
	"aptledger/internal/ledger"
	"aptledger/internal/report"
	"aptledger/internal/services"
	"aptledger/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting aptledgerd")

	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}()
	}

	if cfg.SeedData {
		if err := store.Seed(ctx, result.Store); err != nil {
			logger.Error("Failed to seed data", "error", err)
			os.Exit(1)
		}
	}

	// AMQP is optional; without a broker the ledger still works, only
	// the export events are skipped.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledgerEngine := ledger.New(result.Store, cfg.LedgerStrictRooms)
	paymentService := services.NewPaymentService(ledgerEngine, amqpClient)
	defer paymentService.Close()

	var tokens *auth.TokenManager
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	} else {
		logger.Warn("JWT_SECRET not set, API runs unauthenticated")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Store:              result.Store,
		Payments:           paymentService,
		Reports:            report.NewEngine(result.Store),
		Tokens:             tokens,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
