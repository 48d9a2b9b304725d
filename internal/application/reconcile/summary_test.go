package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

func TestSummarize(t *testing.T) {
	repo := newTestRepo(t)
	o := newTestOrchestrator(repo)
	svc := NewSummaryService(repo)
	ctx := context.Background()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	insertExpense(t, repo, &ledger.Expense{
		ID: "exp-1", UserID: "user-1", AmountCents: 4250, Currency: "CHF",
		Date: date, Merchant: "Coop",
	})
	insertExpense(t, repo, &ledger.Expense{
		ID: "exp-2", UserID: "user-1", AmountCents: 1800, Currency: "CHF",
		Date: date, Merchant: "Migros",
	})
	insertTransaction(t, repo, &ledger.Transaction{
		ID: "txn-1", UserID: "user-1", AmountCents: -4250, Currency: "CHF",
		BookingDate: date, Counterparty: "Coop",
	})

	_, err := o.Run(ctx, runOptions(true))
	require.NoError(t, err)

	summary, err := svc.Summarize(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stats.TotalMatches)
	assert.Equal(t, 1, summary.Stats.ProbableMatches)
	assert.Equal(t, 1, summary.Stats.Confirmed)
	assert.Equal(t, 1, summary.UnmatchedExpenses)
	assert.Equal(t, 0, summary.UnmatchedTransactions)
	require.Len(t, summary.RecentSessions, 1)
	assert.Equal(t, ledger.SessionCompleted, summary.RecentSessions[0].Status)
}

func TestSummarizeCapsRecentSessions(t *testing.T) {
	repo := newTestRepo(t)
	o := newTestOrchestrator(repo)
	svc := NewSummaryService(repo)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := o.Run(ctx, runOptions(true))
		require.NoError(t, err)
	}

	summary, err := svc.Summarize(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, summary.RecentSessions, 5)
}

func TestSummarizeEmptyUser(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewSummaryService(repo)

	summary, err := svc.Summarize(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stats.TotalMatches)
	assert.Equal(t, 0.0, summary.Stats.AvgConfidence)
	assert.Empty(t, summary.RecentSessions)
}
