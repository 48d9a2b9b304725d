package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// InsertExpense stores a new expense record
func (s *Storage) InsertExpense(ctx context.Context, e *ledger.Expense) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO expenses
	(id, user_id, amount_cents, currency, date, merchant, notes, matched_transaction_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.AmountCents,
		e.Currency,
		dateOnly(e.Date),
		e.Merchant,
		e.Notes,
		nullString(e.MatchedTransactionID),
		e.CreatedAt,
	)

	return err
}

// GetExpense retrieves an expense by ID
func (s *Storage) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	query := `
	SELECT id, user_id, amount_cents, currency, date, merchant, notes, matched_transaction_id, created_at
	FROM expenses WHERE id = ?
	`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	return e, err
}

// unmatchedExpenseFilter excludes expenses carrying a cross-reference or
// any match in a non-rejected state. Rejected matches do not block the
// expense from future runs.
const unmatchedExpenseFilter = `
	e.matched_transaction_id IS NULL
	AND NOT EXISTS (
		SELECT 1 FROM matches m
		WHERE m.expense_id = e.id AND m.user_rejected = 0
	)`

// UnmatchedExpenses returns the user's unmatched expenses within the period
func (s *Storage) UnmatchedExpenses(ctx context.Context, userID string, start, end time.Time) ([]ledger.Expense, error) {
	query := `
	SELECT e.id, e.user_id, e.amount_cents, e.currency, e.date, e.merchant, e.notes,
	       e.matched_transaction_id, e.created_at
	FROM expenses e
	WHERE e.user_id = ?
	AND e.date BETWEEN ? AND ?
	AND ` + unmatchedExpenseFilter + `
	ORDER BY e.date, e.amount_cents DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expenses []ledger.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}

	return expenses, rows.Err()
}

// CountUnmatchedExpenses returns the live count of unmatched expenses
func (s *Storage) CountUnmatchedExpenses(ctx context.Context, userID string) (int, error) {
	query := `
	SELECT COUNT(*) FROM expenses e
	WHERE e.user_id = ? AND ` + unmatchedExpenseFilter

	var count int
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*ledger.Expense, error) {
	e := &ledger.Expense{}
	var matchedTxID sql.NullString

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.AmountCents,
		&e.Currency,
		&e.Date,
		&e.Merchant,
		&e.Notes,
		&matchedTxID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if matchedTxID.Valid {
		e.MatchedTransactionID = matchedTxID.String
	}

	return e, nil
}
