package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

func TestSessionLifecycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	session := &ledger.Session{
		UserID:      "user-1",
		Name:        "Reconciliation 2025-03-01 to 2025-03-31",
		PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Strategy:    ledger.StrategyAmountDateMerchant,
	}

	require.NoError(t, s.CreateSession(ctx, session))
	require.NotZero(t, session.ID)
	assert.Equal(t, ledger.SessionRunning, session.Status)

	session.TotalExpenses = 12
	session.TotalTransactions = 15
	session.ExactMatches = 4
	session.ProbableMatches = 3
	session.NeedsReview = 2
	session.AutoAccepted = 7
	session.UnmatchedExpenses = 3
	session.UnmatchedTransactions = 6
	session.FailedToScore = 1
	session.Status = ledger.SessionCompleted
	require.NoError(t, s.CompleteSession(ctx, session))

	sessions, err := s.ListRecentSessions(ctx, "user-1", 5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got := sessions[0]
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "Reconciliation 2025-03-01 to 2025-03-31", got.Name)
	assert.Equal(t, ledger.StrategyAmountDateMerchant, got.Strategy)
	assert.Equal(t, 12, got.TotalExpenses)
	assert.Equal(t, 4, got.ExactMatches)
	assert.Equal(t, 7, got.AutoAccepted)
	assert.Equal(t, 1, got.FailedToScore)
	assert.Equal(t, ledger.SessionCompleted, got.Status)
	assert.False(t, got.CompletedAt.IsZero())
}

func TestListRecentSessionsOrderAndLimit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		session := &ledger.Session{
			UserID:      "user-1",
			Name:        "run",
			PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			Strategy:    ledger.StrategyAmountDateOnly,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.CreateSession(ctx, session))
	}

	sessions, err := s.ListRecentSessions(ctx, "user-1", 5)
	require.NoError(t, err)
	require.Len(t, sessions, 5)

	for i := 1; i < len(sessions); i++ {
		assert.True(t, !sessions[i].CreatedAt.After(sessions[i-1].CreatedAt))
	}
}

func TestListRecentSessionsScopedToUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	session := &ledger.Session{
		UserID:      "user-1",
		PeriodStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Strategy:    ledger.StrategyAmountDateMerchant,
	}
	require.NoError(t, s.CreateSession(ctx, session))

	sessions, err := s.ListRecentSessions(ctx, "user-2", 5)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
