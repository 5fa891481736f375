package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/credeat/credeat-backend/api/routes"
	"github.com/credeat/credeat-backend/internal/accounts"
	analyticsvc "github.com/credeat/credeat-backend/internal/analytics"
	"github.com/credeat/credeat-backend/internal/auth"
	complaintsvc "github.com/credeat/credeat-backend/internal/complaints"
	"github.com/credeat/credeat-backend/internal/ledger"
	mealsvc "github.com/credeat/credeat-backend/internal/meals"
	"github.com/credeat/credeat-backend/internal/users"
	walletsvc "github.com/credeat/credeat-backend/internal/wallet"
	"github.com/credeat/credeat-backend/pkg/auth/session"
	"github.com/credeat/credeat-backend/pkg/config"
	"github.com/credeat/credeat-backend/pkg/db"
	"github.com/credeat/credeat-backend/pkg/logger"
	"github.com/credeat/credeat-backend/pkg/metrics"
	"github.com/credeat/credeat-backend/pkg/migrate"
	"github.com/credeat/credeat-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := auth.SeedDevUsers(context.Background(), dbClient, cfg, logg); err != nil {
		logg.Error(context.Background(), "failed to seed dev users", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	accountStore := accounts.NewStore(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())

	engine, err := ledger.NewService(dbClient, accountStore, ledgerRepo, logg, ledgerMetrics, cfg.Ledger.MaxCommitAttempts)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger engine", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		BalanceReader:  accountStore,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	mealRepo := mealsvc.NewRepository(dbClient.DB())
	mealService, err := mealsvc.NewService(mealRepo, ledgerRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create meal service", err)
		os.Exit(1)
	}

	reconciler, err := mealsvc.NewReconciler(mealRepo, ledgerRepo, engine, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create meal reconciler", err)
		os.Exit(1)
	}

	walletService, err := walletsvc.NewService(accountStore, ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	complaintService, err := complaintsvc.NewService(complaintsvc.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create complaint service", err)
		os.Exit(1)
	}

	analyticsService, err := analyticsvc.NewService(dbClient.DB(), ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Sessions:   sessionManager,
			Gatherer:   registry,
			Auth:       authService,
			Register:   registerService,
			Meals:      mealService,
			Reconciler: reconciler,
			Wallet:     walletService,
			Engine:     engine,
			Complaints: complaintService,
			Analytics:  analyticsService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
