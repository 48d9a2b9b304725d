package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// CreateMatch inserts a match row without touching the cross-references.
// Used for needs-review matches awaiting a human decision.
func (s *Storage) CreateMatch(ctx context.Context, m *ledger.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := insertMatch(ctx, tx, m); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// CreateAcceptedMatch inserts an auto-accepted match and writes the
// cross-reference on both sides. Either everything is written or nothing
// is, so a failed run never leaves a one-sided match behind.
func (s *Storage) CreateAcceptedMatch(ctx context.Context, m *ledger.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := insertMatch(ctx, tx, m); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := writeCrossReferences(ctx, tx, m.ExpenseID, m.TransactionID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// insertMatch writes the match row and fills in ID and timestamps.
func insertMatch(ctx context.Context, tx *sql.Tx, m *ledger.Match) error {
	breakdownJSON, err := json.Marshal(m.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
	INSERT INTO matches
	(expense_id, transaction_id, match_type, strategy, confidence, breakdown_json,
	 auto_matched, user_confirmed, user_rejected, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		m.ExpenseID,
		m.TransactionID,
		string(m.Type),
		string(m.Strategy),
		m.Confidence,
		string(breakdownJSON),
		m.AutoMatched,
		m.UserConfirmed,
		m.UserRejected,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	m.ID, err = result.LastInsertId()
	return err
}

// writeCrossReferences links the expense and the transaction to each
// other, removing both from the candidate pool of future runs.
func writeCrossReferences(ctx context.Context, tx *sql.Tx, expenseID, transactionID string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE expenses SET matched_transaction_id = ? WHERE id = ?`,
		transactionID, expenseID,
	); err != nil {
		return fmt.Errorf("failed to update expense cross-reference: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET matched_expense_id = ? WHERE id = ?`,
		expenseID, transactionID,
	); err != nil {
		return fmt.Errorf("failed to update transaction cross-reference: %w", err)
	}

	return nil
}

const matchColumns = `
	m.id, m.expense_id, m.transaction_id, m.match_type, m.strategy, m.confidence,
	m.breakdown_json, m.auto_matched, m.user_confirmed, m.user_rejected,
	m.created_at, m.updated_at`

// GetMatch retrieves a match scoped to its owning user
func (s *Storage) GetMatch(ctx context.Context, id int64, userID string) (*ledger.Match, error) {
	query := `
	SELECT ` + matchColumns + `
	FROM matches m
	JOIN expenses e ON m.expense_id = e.id
	WHERE m.id = ? AND e.user_id = ?
	`

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	return m, err
}

// ListPendingMatches returns needs-review matches awaiting a decision,
// best candidates first
func (s *Storage) ListPendingMatches(ctx context.Context, userID string, limit int) ([]PendingMatch, error) {
	query := `
	SELECT ` + matchColumns + `,
	       e.amount_cents, e.date, e.merchant, e.notes,
	       t.amount_cents, t.booking_date, t.value_date, t.counterparty,
	       t.description, t.reference
	FROM matches m
	JOIN expenses e ON m.expense_id = e.id
	JOIN transactions t ON m.transaction_id = t.id
	WHERE e.user_id = ?
	AND m.match_type = ?
	AND m.user_confirmed = 0
	AND m.user_rejected = 0
	ORDER BY m.confidence DESC, m.created_at ASC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, string(ledger.MatchNeedsReview), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pending []PendingMatch
	for rows.Next() {
		var p PendingMatch
		var breakdownJSON string
		var bookingDate time.Time
		var valueDate sql.NullTime

		err := rows.Scan(
			&p.Match.ID,
			&p.Match.ExpenseID,
			&p.Match.TransactionID,
			&p.Match.Type,
			&p.Match.Strategy,
			&p.Match.Confidence,
			&breakdownJSON,
			&p.Match.AutoMatched,
			&p.Match.UserConfirmed,
			&p.Match.UserRejected,
			&p.Match.CreatedAt,
			&p.Match.UpdatedAt,
			&p.ExpenseAmountCents,
			&p.ExpenseDate,
			&p.ExpenseMerchant,
			&p.ExpenseNotes,
			&p.TransactionAmountCents,
			&bookingDate,
			&valueDate,
			&p.Counterparty,
			&p.TransactionDescription,
			&p.TransactionReference,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(breakdownJSON), &p.Match.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown for match %d: %w", p.Match.ID, err)
		}

		// Value date takes precedence over booking date, same as
		// Transaction.EffectiveDate.
		p.TransactionDate = bookingDate
		if valueDate.Valid {
			p.TransactionDate = valueDate.Time
		}

		pending = append(pending, p)
	}

	return pending, rows.Err()
}

// ConfirmMatch finalizes a pending match and writes both cross-references
// in a single database transaction
func (s *Storage) ConfirmMatch(ctx context.Context, id int64, userID string) (*ledger.Match, error) {
	return s.finalizeMatch(ctx, id, userID, true)
}

// RejectMatch finalizes a pending match without writing cross-references,
// leaving both records available to future runs
func (s *Storage) RejectMatch(ctx context.Context, id int64, userID string) (*ledger.Match, error) {
	return s.finalizeMatch(ctx, id, userID, false)
}

func (s *Storage) finalizeMatch(ctx context.Context, id int64, userID string, confirm bool) (*ledger.Match, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	SELECT ` + matchColumns + `
	FROM matches m
	JOIN expenses e ON m.expense_id = e.id
	WHERE m.id = ? AND e.user_id = ?
	`

	m, err := scanMatch(tx.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}

	if m.Finalized() {
		_ = tx.Rollback()
		return nil, ledger.ErrAlreadyFinalized
	}

	m.UserConfirmed = confirm
	m.UserRejected = !confirm
	m.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE matches SET user_confirmed = ?, user_rejected = ?, updated_at = ? WHERE id = ?`,
		m.UserConfirmed, m.UserRejected, m.UpdatedAt, m.ID,
	); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	if confirm {
		if err := writeCrossReferences(ctx, tx, m.ExpenseID, m.TransactionID); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return m, nil
}

// RejectedMatches returns the user's rejected matches
func (s *Storage) RejectedMatches(ctx context.Context, userID string) ([]ledger.Match, error) {
	query := `
	SELECT ` + matchColumns + `
	FROM matches m
	JOIN expenses e ON m.expense_id = e.id
	WHERE e.user_id = ? AND m.user_rejected = 1
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var matches []ledger.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}

	return matches, rows.Err()
}

// MatchStats returns aggregate match statistics for the user
func (s *Storage) MatchStats(ctx context.Context, userID string) (*MatchStats, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN m.match_type = 'exact' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN m.match_type = 'probable' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN m.match_type = 'needs_review' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN m.user_confirmed = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN m.user_rejected = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(m.confidence), 0)
	FROM matches m
	JOIN expenses e ON m.expense_id = e.id
	WHERE e.user_id = ?
	`

	stats := &MatchStats{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalMatches,
		&stats.ExactMatches,
		&stats.ProbableMatches,
		&stats.NeedsReview,
		&stats.Confirmed,
		&stats.Rejected,
		&stats.AvgConfidence,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func scanMatch(row rowScanner) (*ledger.Match, error) {
	m := &ledger.Match{}
	var breakdownJSON string

	err := row.Scan(
		&m.ID,
		&m.ExpenseID,
		&m.TransactionID,
		&m.Type,
		&m.Strategy,
		&m.Confidence,
		&breakdownJSON,
		&m.AutoMatched,
		&m.UserConfirmed,
		&m.UserRejected,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(breakdownJSON), &m.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown for match %d: %w", m.ID, err)
	}

	return m, nil
}
