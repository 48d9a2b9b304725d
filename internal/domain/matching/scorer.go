// Package matching computes similarity scores between expenses and
// transactions. Scoring is pure: identical inputs always produce
// identical scores, so it is safe to evaluate candidates in any order
// or in parallel.
//
// Example usage:
//
//	scorer := matching.NewScorer(matching.DefaultConfig())
//	confidence, breakdown := scorer.Score(expense, transaction, ledger.StrategyAmountDateMerchant)
//	matchType := scorer.Classify(confidence)
package matching

import (
	"regexp"
	"strings"
	"time"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

// Scorer computes per-field component scores and combines them into a
// single confidence value using a strategy's weight vector.
type Scorer struct {
	config Config

	// amount_tolerance_percentage in basis points, so the tolerance tier
	// is decided with integer arithmetic only
	toleranceBps int64
}

// NewScorer creates a scorer with the given config.
func NewScorer(config Config) *Scorer {
	return &Scorer{
		config:       config,
		toleranceBps: int64(config.AmountTolerancePercentage*10000 + 0.5),
	}
}

// Score computes the confidence of an expense-transaction pair under the
// given strategy, together with the full per-field breakdown.
func (s *Scorer) Score(e ledger.Expense, t ledger.Transaction, strategy ledger.Strategy) (float64, ledger.Breakdown) {
	w := StrategyWeights(strategy)

	b := ledger.Breakdown{
		AmountWeight:      w.Amount,
		DateWeight:        w.Date,
		ReferenceWeight:   w.Reference,
		MerchantWeight:    w.Merchant,
		DescriptionWeight: w.Description,
	}

	b.AmountScore, b.AmountDiffCents = s.amountScore(e.AmountCents, t.AmountCents)
	b.DateScore, b.DateDiffDays = s.dateScore(e.Date, t.EffectiveDate())
	b.ReferenceScore = referenceScore(e.Notes, t.Reference)
	b.MerchantScore = textSimilarity(e.Merchant, t.Counterparty)
	b.DescriptionScore = textSimilarity(e.Notes, t.Description)

	confidence := b.AmountScore*w.Amount +
		b.DateScore*w.Date +
		b.ReferenceScore*w.Reference +
		b.MerchantScore*w.Merchant +
		b.DescriptionScore*w.Description

	return confidence, b
}

// amountScore compares an expense amount with the absolute transaction
// amount. All comparisons run on minor-unit integers: the zero-difference
// case is exact, and the percentage tiers are decided by cross
// multiplication instead of floating point division.
func (s *Scorer) amountScore(expenseCents, transactionCents int64) (float64, int64) {
	txAbs := transactionCents
	if txAbs < 0 {
		txAbs = -txAbs
	}

	diff := expenseCents - txAbs
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return 1.0, 0
	case diff*10000 <= expenseCents*s.toleranceBps:
		return 0.95, diff
	case diff*20 <= expenseCents: // within 5%
		return 0.8, diff
	case diff*10 <= expenseCents: // within 10%
		return 0.6, diff
	default:
		return 0.0, diff
	}
}

// dateScore compares the expense date with the transaction's effective
// date (value date, falling back to booking date).
func (s *Scorer) dateScore(expenseDate, transactionDate time.Time) (float64, int) {
	if expenseDate.IsZero() || transactionDate.IsZero() {
		return 0.0, 0
	}

	diff := daysBetween(expenseDate, transactionDate)

	switch {
	case diff == 0:
		return 1.0, 0
	case diff <= s.config.ExactMatchToleranceDays:
		return 0.9, diff
	case diff <= s.config.ProbableMatchToleranceDays:
		return 0.7, diff
	default:
		return 0.3, diff
	}
}

// daysBetween returns the absolute number of calendar days between two
// dates, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	diff := int(ad.Sub(bd).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// referenceScore extracts a reference token from the expense notes and
// compares it case-insensitively against the transaction reference.
// Absence of a reference on either side counts as a non-match (0.0); the
// component is never excluded from the weighted sum.
func referenceScore(expenseNotes, transactionRef string) float64 {
	ref := ExtractReference(expenseNotes)
	if ref == "" || transactionRef == "" {
		return 0.0
	}

	a := strings.ToLower(ref)
	b := strings.ToLower(transactionRef)

	switch {
	case a == b:
		return 1.0
	case strings.Contains(a, b) || strings.Contains(b, a):
		return 0.8
	default:
		return 0.0
	}
}

var wordPattern = regexp.MustCompile(`\w+`)

// textSimilarity is the Jaccard similarity of the lowercased word token
// sets of two free-text fields. Empty text on either side scores 0.0.
func textSimilarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection

	return float64(intersection) / float64(union)
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		tokens[word] = true
	}
	return tokens
}
