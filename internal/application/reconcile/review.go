package reconcile

import (
	"context"
	"log/slog"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
	"github.com/expensetrace/reconciler/internal/infrastructure/storage"
)

// defaultPendingLimit caps the pending review list when the caller does
// not ask for a specific page size.
const defaultPendingLimit = 50

// ReviewService exposes the human review workflow over pending matches.
type ReviewService struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewReviewService creates a review service
func NewReviewService(repo storage.Repository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		logger: logger,
	}
}

// ListPending returns needs-review matches awaiting a decision, best
// candidates first, with both sides of each pair for display.
func (s *ReviewService) ListPending(ctx context.Context, userID string, limit int) ([]storage.PendingMatch, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	return s.repo.ListPendingMatches(ctx, userID, limit)
}

// Confirm accepts a pending match. The cross-reference is written on
// both records, removing them from the candidate pool.
func (s *ReviewService) Confirm(ctx context.Context, id int64, userID string) (*ledger.Match, error) {
	m, err := s.repo.ConfirmMatch(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Match confirmed",
		"match_id", m.ID,
		"expense_id", m.ExpenseID,
		"transaction_id", m.TransactionID,
		"confidence", m.Confidence,
	)

	return m, nil
}

// Reject declines a pending match. Both records return to the candidate
// pool, but the pair itself is never proposed again.
func (s *ReviewService) Reject(ctx context.Context, id int64, userID string) (*ledger.Match, error) {
	m, err := s.repo.RejectMatch(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Match rejected",
		"match_id", m.ID,
		"expense_id", m.ExpenseID,
		"transaction_id", m.TransactionID,
		"confidence", m.Confidence,
	)

	return m, nil
}
