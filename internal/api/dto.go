package api

import (
	"errors"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

const dateLayout = "2006-01-02"

// CreateExpenseRequest is the ingestion payload for an expense.
// ID is optional; one is minted when absent.
type CreateExpenseRequest struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency"`
	Date        string `json:"date" binding:"required"`
	Merchant    string `json:"merchant"`
	Notes       string `json:"notes"`
}

// ToExpense converts the request into a domain expense
func (r CreateExpenseRequest) ToExpense() (*ledger.Expense, error) {
	if r.AmountCents <= 0 {
		return nil, errors.New("amount_cents must be positive")
	}

	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return nil, errors.New("date must be formatted as YYYY-MM-DD")
	}

	currency := r.Currency
	if currency == "" {
		currency = "CHF"
	}

	return &ledger.Expense{
		ID:          r.ID,
		UserID:      r.UserID,
		AmountCents: r.AmountCents,
		Currency:    currency,
		Date:        date,
		Merchant:    r.Merchant,
		Notes:       r.Notes,
	}, nil
}

// CreateTransactionRequest is the ingestion payload for a statement
// transaction. AmountCents is signed: negative for debits.
type CreateTransactionRequest struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id" binding:"required"`
	AmountCents  int64  `json:"amount_cents" binding:"required"`
	Currency     string `json:"currency"`
	BookingDate  string `json:"booking_date" binding:"required"`
	ValueDate    string `json:"value_date"`
	Counterparty string `json:"counterparty"`
	Description  string `json:"description"`
	Reference    string `json:"reference"`
}

// ToTransaction converts the request into a domain transaction
func (r CreateTransactionRequest) ToTransaction() (*ledger.Transaction, error) {
	bookingDate, err := time.Parse(dateLayout, r.BookingDate)
	if err != nil {
		return nil, errors.New("booking_date must be formatted as YYYY-MM-DD")
	}

	var valueDate time.Time
	if r.ValueDate != "" {
		valueDate, err = time.Parse(dateLayout, r.ValueDate)
		if err != nil {
			return nil, errors.New("value_date must be formatted as YYYY-MM-DD")
		}
	}

	currency := r.Currency
	if currency == "" {
		currency = "CHF"
	}

	return &ledger.Transaction{
		ID:           r.ID,
		UserID:       r.UserID,
		AmountCents:  r.AmountCents,
		Currency:     currency,
		BookingDate:  bookingDate,
		ValueDate:    valueDate,
		Counterparty: r.Counterparty,
		Description:  r.Description,
		Reference:    r.Reference,
	}, nil
}

// ReconcileRequest starts a reconciliation run over a period
type ReconcileRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	Strategy    string `json:"strategy"`
	AutoAccept  bool   `json:"auto_accept"`
}

// DecisionRequest carries the acting user for a confirm or reject call
type DecisionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
