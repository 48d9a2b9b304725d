// Package ledger defines the core entities of the reconciliation engine:
// expenses captured from receipts or manual entry, transactions ingested
// from bank and card statements, the matches pairing them, and the
// sessions tracking each reconciliation run.
//
// Matches and sessions reference expenses and transactions by identifier
// only. There are no live object references between the entity kinds.
package ledger

import (
	"errors"
	"time"
)

// Sentinel errors shared by the review workflow and storage layer.
var (
	// ErrNotFound is returned when a record does not exist or does not
	// belong to the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyFinalized is returned when confirming or rejecting a
	// match that has already been confirmed or rejected.
	ErrAlreadyFinalized = errors.New("match already finalized")
)

// MatchType classifies the confidence band of an expense-transaction pair.
type MatchType string

const (
	MatchExact       MatchType = "exact"
	MatchProbable    MatchType = "probable"
	MatchNeedsReview MatchType = "needs_review"

	// MatchNone is the classification result for pairs below the minimum
	// match score. It is never persisted.
	MatchNone MatchType = "no_match"
)

// Strategy names a weighting profile over the scoring fields.
type Strategy string

const (
	StrategyAmountDateReference Strategy = "amount_date_reference"
	StrategyAmountDateMerchant  Strategy = "amount_date_merchant"
	StrategyAmountDateOnly      Strategy = "amount_date_only"
	StrategyReferenceOnly       Strategy = "reference_only"
	StrategyFuzzyMatching       Strategy = "fuzzy_matching"
)

// DefaultStrategy is the general-purpose strategy for card payments.
const DefaultStrategy = StrategyAmountDateMerchant

// ParseStrategy converts a strategy name into a Strategy.
// An empty name yields DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyAmountDateReference, StrategyAmountDateMerchant,
		StrategyAmountDateOnly, StrategyReferenceOnly, StrategyFuzzyMatching:
		return Strategy(name), nil
	case "":
		return DefaultStrategy, nil
	default:
		return "", errors.New("unknown match strategy: " + name)
	}
}

// Expense is an independently-captured spending record.
// Amounts are positive integers in minor currency units (cents, rappen).
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Date        time.Time `json:"date"`
	Merchant    string    `json:"merchant"`
	Notes       string    `json:"notes,omitempty"`

	// MatchedTransactionID is set when a match involving this expense is
	// accepted. Empty means the expense is still available for matching.
	MatchedTransactionID string `json:"matched_transaction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Transaction is a bank or card statement entry.
// AmountCents is signed: negative for debits, positive for credits.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	BookingDate time.Time `json:"booking_date"`

	// ValueDate is the settlement date. Zero when the statement did not
	// carry one; EffectiveDate falls back to the booking date.
	ValueDate time.Time `json:"value_date,omitempty"`

	Counterparty string `json:"counterparty"`
	Description  string `json:"description"`
	Reference    string `json:"reference,omitempty"`

	// MatchedExpenseID is set when a match involving this transaction is
	// accepted. Empty means the transaction is still available.
	MatchedExpenseID string `json:"matched_expense_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EffectiveDate returns the value date, or the booking date when no
// value date was supplied.
func (t Transaction) EffectiveDate() time.Time {
	if !t.ValueDate.IsZero() {
		return t.ValueDate
	}
	return t.BookingDate
}

// Breakdown records the per-field component scores behind a confidence
// value, together with the weights that combined them. It is persisted
// alongside the match so reviewers can see why a pair was proposed.
type Breakdown struct {
	AmountScore      float64 `json:"amount_score"`
	DateScore        float64 `json:"date_score"`
	ReferenceScore   float64 `json:"reference_score"`
	MerchantScore    float64 `json:"merchant_score"`
	DescriptionScore float64 `json:"description_score"`

	AmountWeight      float64 `json:"amount_weight"`
	DateWeight        float64 `json:"date_weight"`
	ReferenceWeight   float64 `json:"reference_weight"`
	MerchantWeight    float64 `json:"merchant_weight"`
	DescriptionWeight float64 `json:"description_weight"`

	AmountDiffCents int64 `json:"amount_diff_cents"`
	DateDiffDays    int   `json:"date_diff_days"`
}

// Match pairs one expense with one transaction. The pair is unique.
//
// UserConfirmed and UserRejected are mutually exclusive and default
// false. Once either is set it is authoritative: a rejected pair is
// never proposed again, a confirmed pair keeps its cross-reference.
type Match struct {
	ID            int64     `json:"id"`
	ExpenseID     string    `json:"expense_id"`
	TransactionID string    `json:"transaction_id"`
	Type          MatchType `json:"match_type"`
	Strategy      Strategy  `json:"strategy"`
	Confidence    float64   `json:"confidence"`
	Breakdown     Breakdown `json:"breakdown"`
	AutoMatched   bool      `json:"auto_matched"`
	UserConfirmed bool      `json:"user_confirmed"`
	UserRejected  bool      `json:"user_rejected"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Finalized reports whether the match has been confirmed or rejected.
func (m Match) Finalized() bool {
	return m.UserConfirmed || m.UserRejected
}

// Session status values.
const (
	SessionRunning             = "running"
	SessionCompleted           = "completed"
	SessionCompletedWithErrors = "completed_with_errors"
	SessionCancelled           = "cancelled"
)

// Session records one reconciliation run and its aggregate counts.
// It is immutable after completion except for the completion timestamp
// and final counts written by the orchestrator.
type Session struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Strategy    Strategy  `json:"strategy"`

	TotalExpenses         int `json:"total_expenses"`
	TotalTransactions     int `json:"total_transactions"`
	ExactMatches          int `json:"exact_matches"`
	ProbableMatches       int `json:"probable_matches"`
	NeedsReview           int `json:"needs_review"`
	AutoAccepted          int `json:"auto_accepted"`
	UnmatchedExpenses     int `json:"unmatched_expenses"`
	UnmatchedTransactions int `json:"unmatched_transactions"`
	FailedToScore         int `json:"failed_to_score"`

	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}
