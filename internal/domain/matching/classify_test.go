package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

func TestClassifyThresholds(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		confidence float64
		want       ledger.MatchType
	}{
		{1.0, ledger.MatchExact},
		{0.95, ledger.MatchExact},
		{0.94, ledger.MatchProbable},
		{0.85, ledger.MatchProbable},
		{0.84, ledger.MatchNeedsReview},
		{0.7, ledger.MatchNeedsReview},
		{0.69, ledger.MatchNone},
		{0.0, ledger.MatchNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Classify(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumMatchScore = 0.5
	cfg.AutoAcceptProbableThreshold = 0.8
	s := NewScorer(cfg)

	assert.Equal(t, ledger.MatchProbable, s.Classify(0.8))
	assert.Equal(t, ledger.MatchNeedsReview, s.Classify(0.5))
	assert.Equal(t, ledger.MatchNone, s.Classify(0.49))
}
