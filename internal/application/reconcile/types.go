// Package reconcile orchestrates reconciliation runs and the human
// review workflow over the domain scorer and the storage layer.
package reconcile

import (
	"errors"
	"log/slog"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
	"github.com/expensetrace/reconciler/internal/domain/matching"
	"github.com/expensetrace/reconciler/internal/infrastructure/storage"
)

// Options holds the parameters of one reconciliation run
type Options struct {
	UserID      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Strategy    ledger.Strategy
	AutoAccept  bool
}

// Validate checks that the run parameters are usable
func (o Options) Validate() error {
	if o.UserID == "" {
		return errors.New("user ID is required")
	}
	if o.PeriodStart.IsZero() || o.PeriodEnd.IsZero() {
		return errors.New("period start and end are required")
	}
	if o.PeriodEnd.Before(o.PeriodStart) {
		return errors.New("period end is before period start")
	}
	return nil
}

// Result holds the outcome of a reconciliation run
type Result struct {
	SessionID int64  `json:"session_id"`
	Status    string `json:"status"`

	TotalExpenses         int `json:"total_expenses"`
	TotalTransactions     int `json:"total_transactions"`
	ExactMatches          int `json:"exact_matches"`
	ProbableMatches       int `json:"probable_matches"`
	NeedsReview           int `json:"needs_review"`
	AutoAccepted          int `json:"auto_accepted"`
	UnmatchedExpenses     int `json:"unmatched_expenses"`
	UnmatchedTransactions int `json:"unmatched_transactions"`

	// FailedToScore lists the IDs of records skipped because they could
	// not be scored (non-positive amounts, missing dates).
	FailedToScore []string `json:"failed_to_score,omitempty"`

	// WriteErrors counts matches that scored but could not be persisted.
	WriteErrors int `json:"write_errors"`

	// Matches holds the proposals created in this run, capped so large
	// runs do not bloat the response. Counts above are always complete.
	Matches []ledger.Match `json:"matches,omitempty"`
}

// maxReportedMatches caps Result.Matches.
const maxReportedMatches = 50

// Orchestrator runs the matching process over a period
type Orchestrator struct {
	repo   storage.Repository
	scorer *matching.Scorer
	config matching.Config
	logger *slog.Logger
}

// NewOrchestrator creates a new reconciliation orchestrator
func NewOrchestrator(repo storage.Repository, cfg matching.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		repo:   repo,
		scorer: matching.NewScorer(cfg),
		config: cfg,
		logger: logger,
	}
}
