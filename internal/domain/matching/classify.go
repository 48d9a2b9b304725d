package matching

import "github.com/expensetrace/reconciler/internal/domain/ledger"

// Classify maps a confidence value to a match type via the configured
// thresholds. Pairs below the minimum match score classify as MatchNone
// and are never persisted.
func (s *Scorer) Classify(confidence float64) ledger.MatchType {
	switch {
	case confidence >= s.config.AutoAcceptExactThreshold:
		return ledger.MatchExact
	case confidence >= s.config.AutoAcceptProbableThreshold:
		return ledger.MatchProbable
	case confidence >= s.config.MinimumMatchScore:
		return ledger.MatchNeedsReview
	default:
		return ledger.MatchNone
	}
}
