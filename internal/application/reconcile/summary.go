package reconcile

import (
	"context"
	"fmt"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
	"github.com/expensetrace/reconciler/internal/infrastructure/storage"
)

// recentSessionCount is how many past runs the summary includes.
const recentSessionCount = 5

// Summary combines aggregate match statistics with live unmatched counts
// and the most recent reconciliation runs.
type Summary struct {
	Stats                 storage.MatchStats `json:"stats"`
	UnmatchedExpenses     int                `json:"unmatched_expenses"`
	UnmatchedTransactions int                `json:"unmatched_transactions"`
	RecentSessions        []ledger.Session   `json:"recent_sessions"`
}

// SummaryService reports reconciliation state for a user.
type SummaryService struct {
	repo storage.Repository
}

// NewSummaryService creates a summary service
func NewSummaryService(repo storage.Repository) *SummaryService {
	return &SummaryService{repo: repo}
}

// Summarize returns the user's current reconciliation summary. Unmatched
// counts are computed live rather than read from the last session, so
// the summary stays correct after confirmations and rejections.
func (s *SummaryService) Summarize(ctx context.Context, userID string) (*Summary, error) {
	stats, err := s.repo.MatchStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match stats: %w", err)
	}

	unmatchedExpenses, err := s.repo.CountUnmatchedExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unmatched expenses: %w", err)
	}

	unmatchedTransactions, err := s.repo.CountUnmatchedTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unmatched transactions: %w", err)
	}

	sessions, err := s.repo.ListRecentSessions(ctx, userID, recentSessionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions: %w", err)
	}

	return &Summary{
		Stats:                 *stats,
		UnmatchedExpenses:     unmatchedExpenses,
		UnmatchedTransactions: unmatchedTransactions,
		RecentSessions:        sessions,
	}, nil
}
