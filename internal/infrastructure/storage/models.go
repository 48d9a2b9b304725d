package storage

import (
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// PendingMatch is a match awaiting review, joined with the expense and
// transaction display fields a reviewer needs to decide.
type PendingMatch struct {
	Match ledger.Match `json:"match"`

	ExpenseAmountCents int64     `json:"expense_amount_cents"`
	ExpenseDate        time.Time `json:"expense_date"`
	ExpenseMerchant    string    `json:"expense_merchant"`
	ExpenseNotes       string    `json:"expense_notes,omitempty"`

	TransactionAmountCents int64     `json:"transaction_amount_cents"`
	TransactionDate        time.Time `json:"transaction_date"`
	Counterparty           string    `json:"counterparty"`
	TransactionDescription string    `json:"transaction_description,omitempty"`
	TransactionReference   string    `json:"transaction_reference,omitempty"`
}

// MatchStats aggregates a user's match records across all sessions.
type MatchStats struct {
	TotalMatches    int     `json:"total_matches"`
	ExactMatches    int     `json:"exact_matches"`
	ProbableMatches int     `json:"probable_matches"`
	NeedsReview     int     `json:"needs_review"`
	Confirmed       int     `json:"confirmed_matches"`
	Rejected        int     `json:"rejected_matches"`
	AvgConfidence   float64 `json:"avg_confidence"`
}
