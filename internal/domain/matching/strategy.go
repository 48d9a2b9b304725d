package matching

import "github.com/expensetrace/reconciler/internal/domain/ledger"

// Weights is a strategy's weight vector over the five scoring fields.
// Each vector sums to 1.0, so a confidence value stays in [0, 1].
type Weights struct {
	Amount      float64
	Date        float64
	Reference   float64
	Merchant    float64
	Description float64
}

// StrategyWeights returns the weight vector for a strategy.
//
//   - AmountDateReference: structured bank transfers carrying a payment reference
//   - AmountDateMerchant: card payments, the general-purpose default
//   - AmountDateOnly: sparse data fallback
//   - ReferenceOnly: invoices with strong references
//   - FuzzyMatching: last-resort broad matching
func StrategyWeights(s ledger.Strategy) Weights {
	switch s {
	case ledger.StrategyAmountDateReference:
		return Weights{Amount: 0.4, Date: 0.3, Reference: 0.3}
	case ledger.StrategyAmountDateMerchant:
		return Weights{Amount: 0.5, Date: 0.25, Reference: 0.1, Merchant: 0.15}
	case ledger.StrategyAmountDateOnly:
		return Weights{Amount: 0.7, Date: 0.3}
	case ledger.StrategyReferenceOnly:
		return Weights{Amount: 0.3, Date: 0.2, Reference: 0.5}
	case ledger.StrategyFuzzyMatching:
		return Weights{Amount: 0.3, Date: 0.2, Reference: 0.15, Merchant: 0.2, Description: 0.15}
	default:
		return Weights{Amount: 0.4, Date: 0.3, Reference: 0.15, Merchant: 0.1, Description: 0.05}
	}
}

// Strategies lists every named strategy.
func Strategies() []ledger.Strategy {
	return []ledger.Strategy{
		ledger.StrategyAmountDateReference,
		ledger.StrategyAmountDateMerchant,
		ledger.StrategyAmountDateOnly,
		ledger.StrategyReferenceOnly,
		ledger.StrategyFuzzyMatching,
	}
}
