package matching

// Config holds the scoring tolerances and classification thresholds.
type Config struct {
	ExactMatchToleranceDays     int     // date difference still scoring 0.9 (default: 2)
	ProbableMatchToleranceDays  int     // date difference still scoring 0.7, also the candidate window buffer (default: 7)
	AmountTolerancePercentage   float64 // amount difference still scoring 0.95 (default: 0.01)
	MinimumMatchScore           float64 // below this a pair is discarded (default: 0.7)
	AutoAcceptProbableThreshold float64 // probable classification and auto-accept floor (default: 0.85)
	AutoAcceptExactThreshold    float64 // exact classification floor (default: 0.95)
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ExactMatchToleranceDays:     2,
		ProbableMatchToleranceDays:  7,
		AmountTolerancePercentage:   0.01,
		MinimumMatchScore:           0.7,
		AutoAcceptProbableThreshold: 0.85,
		AutoAcceptExactThreshold:    0.95,
	}
}
