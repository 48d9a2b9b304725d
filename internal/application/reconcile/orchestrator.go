package reconcile

import (
	"context"
	"fmt"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// Run executes one reconciliation pass over the period.
//
// Candidate sets are fetched before the session row is created, so a
// failed fetch aborts the run without leaving a session behind. Write
// failures for individual matches do not abort the run; they are counted
// and the session completes with status completed_with_errors.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	strategy, err := ledger.ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}

	o.logger.Info("Starting reconciliation",
		"user_id", opts.UserID,
		"period_start", opts.PeriodStart.Format("2006-01-02"),
		"period_end", opts.PeriodEnd.Format("2006-01-02"),
		"strategy", string(strategy),
		"auto_accept", opts.AutoAccept,
	)

	expenses, err := o.repo.UnmatchedExpenses(ctx, opts.UserID, opts.PeriodStart, opts.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	// Transactions settle later than the purchase, so the candidate window
	// is widened by the probable-match tolerance on both sides.
	txStart := opts.PeriodStart.AddDate(0, 0, -o.config.ProbableMatchToleranceDays)
	txEnd := opts.PeriodEnd.AddDate(0, 0, o.config.ProbableMatchToleranceDays)

	transactions, err := o.repo.UnmatchedTransactions(ctx, opts.UserID, txStart, txEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	rejected, err := o.repo.RejectedMatches(ctx, opts.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rejected matches: %w", err)
	}

	// Rejected pairs are never proposed again, but both records stay in
	// the candidate pool for other pairings.
	rejectedPairs := make(map[string]bool, len(rejected))
	for _, m := range rejected {
		rejectedPairs[m.ExpenseID+"|"+m.TransactionID] = true
	}

	session := &ledger.Session{
		UserID: opts.UserID,
		Name: fmt.Sprintf("Reconciliation %s to %s",
			opts.PeriodStart.Format("2006-01-02"), opts.PeriodEnd.Format("2006-01-02")),
		PeriodStart: opts.PeriodStart,
		PeriodEnd:   opts.PeriodEnd,
		Strategy:    strategy,
	}
	if err := o.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	result := &Result{
		SessionID:         session.ID,
		TotalExpenses:     len(expenses),
		TotalTransactions: len(transactions),
	}

	scorable := make([]ledger.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.EffectiveDate().IsZero() {
			o.logger.Warn("Skipping unscorable transaction", "transaction_id", t.ID)
			result.FailedToScore = append(result.FailedToScore, t.ID)
			continue
		}
		scorable = append(scorable, t)
	}

	usedTransactionIDs := make(map[string]bool)

	var cancelErr error
	for _, expense := range expenses {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		if expense.AmountCents <= 0 || expense.Date.IsZero() {
			o.logger.Warn("Skipping unscorable expense",
				"expense_id", expense.ID,
				"amount_cents", expense.AmountCents,
			)
			result.FailedToScore = append(result.FailedToScore, expense.ID)
			continue
		}

		best, found := o.bestCandidate(expense, scorable, strategy, usedTransactionIDs, rejectedPairs)
		if !found {
			result.UnmatchedExpenses++
			continue
		}

		matchType := o.scorer.Classify(best.Confidence)
		if matchType == ledger.MatchNone {
			result.UnmatchedExpenses++
			continue
		}
		best.Type = matchType

		autoAccept := opts.AutoAccept &&
			(matchType == ledger.MatchExact || matchType == ledger.MatchProbable)

		if autoAccept {
			best.AutoMatched = true
			best.UserConfirmed = true
			err = o.repo.CreateAcceptedMatch(ctx, &best)
		} else {
			err = o.repo.CreateMatch(ctx, &best)
		}
		if err != nil {
			o.logger.Error("Failed to persist match",
				"expense_id", best.ExpenseID,
				"transaction_id", best.TransactionID,
				"error", err,
			)
			result.WriteErrors++
			continue
		}

		usedTransactionIDs[best.TransactionID] = true

		switch matchType {
		case ledger.MatchExact:
			result.ExactMatches++
		case ledger.MatchProbable:
			result.ProbableMatches++
		case ledger.MatchNeedsReview:
			result.NeedsReview++
		}
		if autoAccept {
			result.AutoAccepted++
		}

		if len(result.Matches) < maxReportedMatches {
			result.Matches = append(result.Matches, best)
		}

		o.logger.Debug("Proposed match",
			"expense_id", best.ExpenseID,
			"transaction_id", best.TransactionID,
			"match_type", string(matchType),
			"confidence", best.Confidence,
			"auto_accepted", autoAccept,
		)
	}

	for _, t := range scorable {
		if !usedTransactionIDs[t.ID] {
			result.UnmatchedTransactions++
		}
	}

	result.Status = ledger.SessionCompleted
	if result.WriteErrors > 0 {
		result.Status = ledger.SessionCompletedWithErrors
	}
	if cancelErr != nil {
		result.Status = ledger.SessionCancelled
	}

	session.TotalExpenses = result.TotalExpenses
	session.TotalTransactions = result.TotalTransactions
	session.ExactMatches = result.ExactMatches
	session.ProbableMatches = result.ProbableMatches
	session.NeedsReview = result.NeedsReview
	session.AutoAccepted = result.AutoAccepted
	session.UnmatchedExpenses = result.UnmatchedExpenses
	session.UnmatchedTransactions = result.UnmatchedTransactions
	session.FailedToScore = len(result.FailedToScore)
	session.Status = result.Status

	// A cancelled run still closes its session with the counts so far,
	// so no row stays in status running.
	completeCtx := ctx
	if cancelErr != nil {
		completeCtx = context.WithoutCancel(ctx)
	}
	if err := o.repo.CompleteSession(completeCtx, session); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	if cancelErr != nil {
		o.logger.Warn("Reconciliation cancelled",
			"session_id", session.ID,
			"auto_accepted", result.AutoAccepted,
			"needs_review", result.NeedsReview,
		)
		return nil, cancelErr
	}

	o.logger.Info("Reconciliation finished",
		"session_id", session.ID,
		"status", result.Status,
		"exact", result.ExactMatches,
		"probable", result.ProbableMatches,
		"needs_review", result.NeedsReview,
		"auto_accepted", result.AutoAccepted,
		"unmatched_expenses", result.UnmatchedExpenses,
		"unmatched_transactions", result.UnmatchedTransactions,
	)

	return result, nil
}

// bestCandidate scores the expense against every available transaction
// and returns the winning proposal. Ties on confidence go to the smaller
// date difference, then to the lexicographically smaller transaction ID,
// so a run over identical data always proposes the same pairs.
func (o *Orchestrator) bestCandidate(
	expense ledger.Expense,
	transactions []ledger.Transaction,
	strategy ledger.Strategy,
	used map[string]bool,
	rejectedPairs map[string]bool,
) (ledger.Match, bool) {
	var best ledger.Match
	found := false

	for _, t := range transactions {
		if used[t.ID] {
			continue
		}
		if rejectedPairs[expense.ID+"|"+t.ID] {
			continue
		}

		confidence, breakdown := o.scorer.Score(expense, t, strategy)
		if confidence < o.config.MinimumMatchScore {
			continue
		}

		candidate := ledger.Match{
			ExpenseID:     expense.ID,
			TransactionID: t.ID,
			Strategy:      strategy,
			Confidence:    confidence,
			Breakdown:     breakdown,
		}

		if !found || betterCandidate(candidate, best) {
			best = candidate
			found = true
		}
	}

	return best, found
}

func betterCandidate(a, b ledger.Match) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Breakdown.DateDiffDays != b.Breakdown.DateDiffDays {
		return a.Breakdown.DateDiffDays < b.Breakdown.DateDiffDays
	}
	return a.TransactionID < b.TransactionID
}
