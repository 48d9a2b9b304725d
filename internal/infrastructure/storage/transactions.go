package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// InsertTransaction stores a new transaction record
func (s *Storage) InsertTransaction(ctx context.Context, t *ledger.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO transactions
	(id, user_id, amount_cents, currency, booking_date, value_date, counterparty,
	 description, reference, matched_expense_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.AmountCents,
		t.Currency,
		dateOnly(t.BookingDate),
		nullTime(t.ValueDate),
		t.Counterparty,
		t.Description,
		t.Reference,
		nullString(t.MatchedExpenseID),
		t.CreatedAt,
	)

	return err
}

// GetTransaction retrieves a transaction by ID
func (s *Storage) GetTransaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	query := `
	SELECT id, user_id, amount_cents, currency, booking_date, value_date, counterparty,
	       description, reference, matched_expense_id, created_at
	FROM transactions WHERE id = ?
	`

	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	return t, err
}

// unmatchedTransactionFilter excludes zero-amount entries (card holds,
// informational rows) along with cross-referenced transactions and
// transactions with a match in a non-rejected state.
const unmatchedTransactionFilter = `
	t.amount_cents != 0
	AND t.matched_expense_id IS NULL
	AND NOT EXISTS (
		SELECT 1 FROM matches m
		WHERE m.transaction_id = t.id AND m.user_rejected = 0
	)`

// UnmatchedTransactions returns the user's unmatched transactions whose
// effective date falls within the period
func (s *Storage) UnmatchedTransactions(ctx context.Context, userID string, start, end time.Time) ([]ledger.Transaction, error) {
	query := `
	SELECT t.id, t.user_id, t.amount_cents, t.currency, t.booking_date, t.value_date,
	       t.counterparty, t.description, t.reference, t.matched_expense_id, t.created_at
	FROM transactions t
	WHERE t.user_id = ?
	AND COALESCE(t.value_date, t.booking_date) BETWEEN ? AND ?
	AND ` + unmatchedTransactionFilter + `
	ORDER BY COALESCE(t.value_date, t.booking_date), ABS(t.amount_cents) DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var transactions []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}

	return transactions, rows.Err()
}

// CountUnmatchedTransactions returns the live count of unmatched transactions
func (s *Storage) CountUnmatchedTransactions(ctx context.Context, userID string) (int, error) {
	query := `
	SELECT COUNT(*) FROM transactions t
	WHERE t.user_id = ? AND ` + unmatchedTransactionFilter

	var count int
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func scanTransaction(row rowScanner) (*ledger.Transaction, error) {
	t := &ledger.Transaction{}
	var valueDate sql.NullTime
	var matchedExpenseID sql.NullString

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AmountCents,
		&t.Currency,
		&t.BookingDate,
		&valueDate,
		&t.Counterparty,
		&t.Description,
		&t.Reference,
		&matchedExpenseID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if valueDate.Valid {
		t.ValueDate = valueDate.Time
	}
	if matchedExpenseID.Valid {
		t.MatchedExpenseID = matchedExpenseID.String
	}

	return t, nil
}
