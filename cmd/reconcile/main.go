package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/expensetrace/reconciler/internal/application/reconcile"
	"github.com/expensetrace/reconciler/internal/domain/ledger"
	"github.com/expensetrace/reconciler/internal/infrastructure/config"
	"github.com/expensetrace/reconciler/internal/infrastructure/logging"
	"github.com/expensetrace/reconciler/internal/infrastructure/storage"
)

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Configuration file path")
		userID     = flag.String("user", "", "User to reconcile for")
		start      = flag.String("start", "", "Period start (YYYY-MM-DD)")
		end        = flag.String("end", "", "Period end (YYYY-MM-DD)")
		strategy   = flag.String("strategy", "", "Match strategy (default: amount_date_merchant)")
		autoAccept = flag.Bool("auto-accept", false, "Automatically accept exact and probable matches")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.LoadOrEnvWithPath(*configFile)
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "reconcile")

	if *userID == "" {
		logger.Error("-user is required")
		os.Exit(1)
	}

	periodStart, err := time.Parse("2006-01-02", *start)
	if err != nil {
		logger.Error("-start must be formatted as YYYY-MM-DD", "value", *start)
		os.Exit(1)
	}
	periodEnd, err := time.Parse("2006-01-02", *end)
	if err != nil {
		logger.Error("-end must be formatted as YYYY-MM-DD", "value", *end)
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := reconcile.NewOrchestrator(store, cfg.Matching.ToDomain(), logger)

	result, err := orchestrator.Run(ctx, reconcile.Options{
		UserID:      *userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Strategy:    ledger.Strategy(*strategy),
		AutoAccept:  *autoAccept,
	})
	if err != nil {
		logger.Error("Reconciliation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Reconciliation completed",
		slog.Int64("session_id", result.SessionID),
		slog.String("status", result.Status),
		slog.Int("total_expenses", result.TotalExpenses),
		slog.Int("total_transactions", result.TotalTransactions),
		slog.Int("exact", result.ExactMatches),
		slog.Int("probable", result.ProbableMatches),
		slog.Int("needs_review", result.NeedsReview),
		slog.Int("auto_accepted", result.AutoAccepted),
		slog.Int("unmatched_expenses", result.UnmatchedExpenses),
		slog.Int("unmatched_transactions", result.UnmatchedTransactions),
		slog.Int("failed_to_score", len(result.FailedToScore)),
	)

	if result.Status == ledger.SessionCompletedWithErrors {
		logger.Warn("Some matches could not be persisted", "write_errors", result.WriteErrors)
		os.Exit(1)
	}
}
