package storage

import (
	"context"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// fakes straightforward.
type Repository interface {
	ExpenseRepository
	TransactionRepository
	MatchRepository
	SessionRepository
	Close() error
}

// ExpenseRepository handles expense records. Expenses are created by
// upstream ingestion and only ever mutated to record a cross-reference.
type ExpenseRepository interface {
	// InsertExpense stores a new expense record.
	InsertExpense(ctx context.Context, e *ledger.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, id string) (*ledger.Expense, error)

	// UnmatchedExpenses returns the user's expenses dated within
	// [start, end] that have no cross-reference and no match in a
	// non-rejected state.
	UnmatchedExpenses(ctx context.Context, userID string, start, end time.Time) ([]ledger.Expense, error)

	// CountUnmatchedExpenses returns the live count of the user's
	// currently-unmatched expenses, across all dates.
	CountUnmatchedExpenses(ctx context.Context, userID string) (int, error)
}

// TransactionRepository handles statement transaction records.
type TransactionRepository interface {
	// InsertTransaction stores a new transaction record.
	InsertTransaction(ctx context.Context, t *ledger.Transaction) error

	// GetTransaction retrieves a transaction by ID.
	GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error)

	// UnmatchedTransactions returns the user's transactions whose
	// effective date falls within [start, end], with non-zero amount, no
	// cross-reference and no match in a non-rejected state.
	UnmatchedTransactions(ctx context.Context, userID string, start, end time.Time) ([]ledger.Transaction, error)

	// CountUnmatchedTransactions returns the live count of the user's
	// currently-unmatched transactions, across all dates.
	CountUnmatchedTransactions(ctx context.Context, userID string) (int, error)
}

// MatchRepository handles match records and the cross-reference state
// that results from acceptance.
type MatchRepository interface {
	// CreateMatch inserts a match row. The (expense, transaction) pair is
	// unique; inserting a duplicate pair fails.
	CreateMatch(ctx context.Context, m *ledger.Match) error

	// CreateAcceptedMatch inserts an auto-accepted match and writes the
	// cross-reference on both the expense and the transaction, all in one
	// database transaction.
	CreateAcceptedMatch(ctx context.Context, m *ledger.Match) error

	// GetMatch retrieves a match owned by the given user.
	// Returns ledger.ErrNotFound when the match does not exist or belongs
	// to another user.
	GetMatch(ctx context.Context, id int64, userID string) (*ledger.Match, error)

	// ListPendingMatches returns needs-review matches awaiting a decision,
	// ordered by confidence descending then creation time ascending.
	ListPendingMatches(ctx context.Context, userID string, limit int) ([]PendingMatch, error)

	// ConfirmMatch sets user_confirmed and writes both cross-references
	// atomically. Returns ledger.ErrAlreadyFinalized when the match was
	// already confirmed or rejected.
	ConfirmMatch(ctx context.Context, id int64, userID string) (*ledger.Match, error)

	// RejectMatch sets user_rejected. No cross-reference is written, so
	// both records return to the candidate pool.
	RejectMatch(ctx context.Context, id int64, userID string) (*ledger.Match, error)

	// RejectedMatches returns the user's rejected matches. The
	// orchestrator uses them to keep rejected pairs from being proposed
	// again.
	RejectedMatches(ctx context.Context, userID string) ([]ledger.Match, error)

	// MatchStats returns aggregate match statistics for the user.
	MatchStats(ctx context.Context, userID string) (*MatchStats, error)
}

// SessionRepository handles reconciliation run tracking.
type SessionRepository interface {
	// CreateSession records the start of a reconciliation run and sets
	// the session ID.
	CreateSession(ctx context.Context, s *ledger.Session) error

	// CompleteSession writes the final counts, status and completion
	// timestamp of a run.
	CompleteSession(ctx context.Context, s *ledger.Session) error

	// ListRecentSessions returns the user's most recent sessions, newest
	// first.
	ListRecentSessions(ctx context.Context, userID string, limit int) ([]ledger.Session, error)
}
