// Command app wires the client core together: it restores the persisted
// session, loads a snapshot from the backing store, and prints a short
// summary. It is the headless harness a UI shell would embed.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"fincoach/internal/analysis"
	"fincoach/internal/app"
	"fincoach/internal/config"
	"fincoach/internal/database"
	"fincoach/internal/logger"
	"fincoach/internal/models"
	"fincoach/internal/seed"
	"fincoach/internal/session"
	"fincoach/internal/store"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Startup error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbManager, err := database.NewManager(database.FromApp(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("closing backing store: %v", err)
		}
	}()

	sess, err := session.Open(cfg.StateDir)
	if err != nil {
		return err
	}

	dailyGoal, err := decimal.NewFromString(cfg.DailyGoal)
	if err != nil {
		log.Warnf("invalid DAILY_GOAL %q, using 300", cfg.DailyGoal)
		dailyGoal = decimal.NewFromInt(300)
	}

	tokens := store.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpirationDur)
	storeClient := store.NewClient(dbManager.DB(), tokens)
	analysisClient := analysis.NewClient(cfg.AnalysisBaseURL, &http.Client{Timeout: cfg.AnalysisTimeout})
	seeder := seed.New(storeClient, log)

	coordinator := app.New(app.Deps{
		Session:   sess,
		Store:     storeClient,
		Analysis:  analysisClient,
		Seeder:    seeder,
		Log:       log,
		DailyGoal: dailyGoal,
		Today:     func() string { return time.Now().Format(models.DateFormat) },
	})
	defer coordinator.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator.Initialize(ctx)

	snap := coordinator.Snapshot()
	switch snap.Phase {
	case app.PhaseAuthenticated:
		log.Infow("session restored",
			"user", snap.User.FullName,
			"balance", snap.Balance.StringFixed(2),
			"transactions", len(snap.Transactions),
			"recommendations", len(snap.Recommendations),
			"goal_progress", snap.GoalProgress,
		)
	default:
		log.Infow("no stored session, starting anonymous")
	}

	if snap.Load == app.LoadFailed {
		log.Warnw("snapshot load failed", "error", snap.Err)
	}
	return nil
}
