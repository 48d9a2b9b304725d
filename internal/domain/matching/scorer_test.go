package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/expensetrace/reconciler/internal/domain/ledger"
)

func TestAmountScoreTiers(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		name        string
		expense     int64
		transaction int64
		wantScore   float64
		wantDiff    int64
	}{
		{"identical", 10000, -10000, 1.0, 0},
		{"sign ignored", 10000, 10000, 1.0, 0},
		{"within tolerance", 10000, -10100, 0.95, 100},
		{"within five percent", 10000, -10300, 0.8, 300},
		{"within ten percent", 10000, -10800, 0.6, 800},
		{"beyond ten percent", 10000, -11500, 0.0, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, diff := s.amountScore(tt.expense, tt.transaction)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantDiff, diff)
		})
	}
}

func TestAmountScoreToleranceBoundary(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// 1% of 10000 is exactly 100
	score, _ := s.amountScore(10000, -10100)
	assert.Equal(t, 0.95, score)

	score, _ = s.amountScore(10000, -10101)
	assert.Equal(t, 0.8, score)
}

func TestDateScoreTiers(t *testing.T) {
	s := NewScorer(DefaultConfig())
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		days      int
		wantScore float64
	}{
		{"same day", 0, 1.0},
		{"within exact tolerance", 2, 0.9},
		{"within probable tolerance", 7, 0.7},
		{"beyond probable tolerance", 8, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, diff := s.dateScore(base, base.AddDate(0, 0, tt.days))
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.days, diff)

			// Symmetric in either direction
			score, _ = s.dateScore(base, base.AddDate(0, 0, -tt.days))
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestDateScoreIgnoresTimeOfDay(t *testing.T) {
	s := NewScorer(DefaultConfig())

	a := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	b := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

	score, diff := s.dateScore(a, b)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, 0, diff)
}

func TestDateScoreZeroDates(t *testing.T) {
	s := NewScorer(DefaultConfig())

	score, _ := s.dateScore(time.Time{}, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 0.0, score)
}

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "Coop", "Coop", 1.0},
		{"case insensitive", "COOP", "coop", 1.0},
		{"partial overlap", "Coop", "Coop Genossenschaft", 0.5},
		{"no overlap", "Coop", "Migros", 0.0},
		{"empty left", "", "Coop", 0.0},
		{"empty right", "Coop", "", 0.0},
		{"punctuation ignored", "Café du Nord!", "cafe du nord", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, textSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestReferenceScore(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		ref   string
		want  float64
	}{
		{"exact", "ref INV-2025-001", "INV-2025-001", 1.0},
		{"case insensitive", "ref inv-2025-001", "INV-2025-001", 1.0},
		{"containment", "ref 2025-001", "INV-2025-001", 0.8},
		{"mismatch", "ref INV-2025-001", "PAY-999", 0.0},
		{"no reference in notes", "lunch meeting", "INV-2025-001", 0.0},
		{"no transaction reference", "ref INV-2025-001", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, referenceScore(tt.notes, tt.ref))
		})
	}
}

func TestScoreCardPayment(t *testing.T) {
	s := NewScorer(DefaultConfig())

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	e := ledger.Expense{AmountCents: 4250, Date: date, Merchant: "Coop"}
	tx := ledger.Transaction{AmountCents: -4250, BookingDate: date, Counterparty: "Coop"}

	confidence, b := s.Score(e, tx, ledger.StrategyAmountDateMerchant)

	// 1.0*0.5 + 1.0*0.25 + 0.0*0.1 + 1.0*0.15
	assert.InDelta(t, 0.90, confidence, 1e-9)
	assert.Equal(t, 1.0, b.AmountScore)
	assert.Equal(t, 1.0, b.DateScore)
	assert.Equal(t, 0.0, b.ReferenceScore)
	assert.Equal(t, 1.0, b.MerchantScore)
	assert.Equal(t, int64(0), b.AmountDiffCents)
	assert.Equal(t, 0, b.DateDiffDays)
	assert.Equal(t, 0.5, b.AmountWeight)
	assert.Equal(t, 0.25, b.DateWeight)
}

func TestScoreWithReferenceReachesExact(t *testing.T) {
	s := NewScorer(DefaultConfig())

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	e := ledger.Expense{AmountCents: 4250, Date: date, Merchant: "Coop", Notes: "ref INV-2025-001"}
	tx := ledger.Transaction{AmountCents: -4250, BookingDate: date, Counterparty: "Coop", Reference: "INV-2025-001"}

	confidence, _ := s.Score(e, tx, ledger.StrategyAmountDateMerchant)
	assert.InDelta(t, 1.0, confidence, 1e-9)
	assert.Equal(t, ledger.MatchExact, s.Classify(confidence))
}

func TestScoreUsesValueDateWhenPresent(t *testing.T) {
	s := NewScorer(DefaultConfig())

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	e := ledger.Expense{AmountCents: 4250, Date: date}
	tx := ledger.Transaction{
		AmountCents: -4250,
		BookingDate: date.AddDate(0, 0, 10),
		ValueDate:   date,
	}

	_, b := s.Score(e, tx, ledger.StrategyAmountDateOnly)
	assert.Equal(t, 1.0, b.DateScore)
	assert.Equal(t, 0, b.DateDiffDays)
}

func TestScoreFarDateOffset(t *testing.T) {
	s := NewScorer(DefaultConfig())

	e := ledger.Expense{
		AmountCents: 4580,
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Merchant:    "Migros Zurich HB",
	}
	tx := ledger.Transaction{
		AmountCents:  -4580,
		BookingDate:  time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		Counterparty: "MIGROS ZURICH HB",
	}

	// 1.0*0.5 + 0.3*0.25 + 0.0*0.1 + 1.0*0.15
	confidence, b := s.Score(e, tx, ledger.StrategyAmountDateMerchant)
	assert.Equal(t, 0.3, b.DateScore)
	assert.Equal(t, 10, b.DateDiffDays)
	assert.InDelta(t, 0.725, confidence, 1e-9)
	assert.Equal(t, ledger.MatchNeedsReview, s.Classify(confidence))
}

func TestScoreLargeAmountMismatchNeverMatches(t *testing.T) {
	s := NewScorer(DefaultConfig())

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	e := ledger.Expense{AmountCents: 10000, Date: date, Merchant: "Migros Zurich HB"}
	tx := ledger.Transaction{AmountCents: -11500, BookingDate: date, Counterparty: "MIGROS ZURICH HB"}

	// A 15% amount difference zeroes the amount component; perfect date
	// and merchant cannot lift the pair past the minimum match score.
	for _, strategy := range []ledger.Strategy{ledger.StrategyAmountDateOnly, ledger.StrategyAmountDateMerchant} {
		confidence, b := s.Score(e, tx, strategy)
		assert.Equal(t, 0.0, b.AmountScore)
		assert.Equal(t, ledger.MatchNone, s.Classify(confidence))
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer(DefaultConfig())

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	e := ledger.Expense{AmountCents: 4250, Date: date, Merchant: "Coop", Notes: "ref INV-2025-001"}
	tx := ledger.Transaction{AmountCents: -4290, BookingDate: date.AddDate(0, 0, 3), Counterparty: "Coop Genossenschaft"}

	for _, strategy := range Strategies() {
		first, firstBreakdown := s.Score(e, tx, strategy)
		second, secondBreakdown := s.Score(e, tx, strategy)
		assert.Equal(t, first, second)
		assert.Equal(t, firstBreakdown, secondBreakdown)
	}
}

func TestScoreStaysInUnitInterval(t *testing.T) {
	s := NewScorer(DefaultConfig())

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	expenses := []ledger.Expense{
		{AmountCents: 4250, Date: date, Merchant: "Coop", Notes: "ref INV-2025-001"},
		{AmountCents: 100, Date: date.AddDate(0, 0, 30)},
		{AmountCents: 999999, Date: date, Merchant: "Hotel Bellevue", Notes: "conference stay"},
	}
	transactions := []ledger.Transaction{
		{AmountCents: -4250, BookingDate: date, Counterparty: "Coop", Reference: "INV-2025-001"},
		{AmountCents: 50, BookingDate: date},
		{AmountCents: -1000000, BookingDate: date.AddDate(0, 0, -14), Counterparty: "Bellevue AG", Description: "hotel"},
	}

	for _, e := range expenses {
		for _, tx := range transactions {
			for _, strategy := range Strategies() {
				confidence, _ := s.Score(e, tx, strategy)
				assert.GreaterOrEqual(t, confidence, 0.0)
				assert.LessOrEqual(t, confidence, 1.0)
			}
		}
	}
}
