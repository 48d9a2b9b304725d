package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// CreateSession records the start of a reconciliation run
func (s *Storage) CreateSession(ctx context.Context, session *ledger.Session) error {
	if session.Status == "" {
		session.Status = ledger.SessionRunning
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO sessions
	(user_id, name, period_start, period_end, strategy, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		session.UserID,
		session.Name,
		dateOnly(session.PeriodStart),
		dateOnly(session.PeriodEnd),
		string(session.Strategy),
		session.Status,
		session.CreatedAt,
	)
	if err != nil {
		return err
	}

	session.ID, err = result.LastInsertId()
	return err
}

// CompleteSession writes the final counts and status of a run
func (s *Storage) CompleteSession(ctx context.Context, session *ledger.Session) error {
	if session.CompletedAt.IsZero() {
		session.CompletedAt = time.Now().UTC()
	}

	query := `
	UPDATE sessions
	SET total_expenses = ?, total_transactions = ?,
	    exact_matches = ?, probable_matches = ?, needs_review = ?,
	    auto_accepted = ?, unmatched_expenses = ?, unmatched_transactions = ?,
	    failed_to_score = ?, status = ?, completed_at = ?
	WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, query,
		session.TotalExpenses,
		session.TotalTransactions,
		session.ExactMatches,
		session.ProbableMatches,
		session.NeedsReview,
		session.AutoAccepted,
		session.UnmatchedExpenses,
		session.UnmatchedTransactions,
		session.FailedToScore,
		session.Status,
		session.CompletedAt,
		session.ID,
	)

	return err
}

// ListRecentSessions returns the user's most recent sessions, newest first
func (s *Storage) ListRecentSessions(ctx context.Context, userID string, limit int) ([]ledger.Session, error) {
	query := `
	SELECT id, user_id, name, period_start, period_end, strategy,
	       total_expenses, total_transactions, exact_matches, probable_matches,
	       needs_review, auto_accepted, unmatched_expenses, unmatched_transactions,
	       failed_to_score, status, created_at, completed_at
	FROM sessions
	WHERE user_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []ledger.Session
	for rows.Next() {
		var session ledger.Session
		var completedAt sql.NullTime

		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Name,
			&session.PeriodStart,
			&session.PeriodEnd,
			&session.Strategy,
			&session.TotalExpenses,
			&session.TotalTransactions,
			&session.ExactMatches,
			&session.ProbableMatches,
			&session.NeedsReview,
			&session.AutoAccepted,
			&session.UnmatchedExpenses,
			&session.UnmatchedTransactions,
			&session.FailedToScore,
			&session.Status,
			&session.CreatedAt,
			&completedAt,
		)
		if err != nil {
			return nil, err
		}

		if completedAt.Valid {
			session.CompletedAt = completedAt.Time
		}

		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
