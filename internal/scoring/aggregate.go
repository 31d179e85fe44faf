package scoring

import (
	"gram-rakshak/backend/internal/signal"
)

// Score bounds and verdict thresholds. Boundaries are inclusive: a score
// landing exactly on a threshold takes the more trustworthy tier.
const (
	MaxScore = 100
	MinScore = 0

	VerifiedThreshold   = 70
	SuspiciousThreshold = 40

	// DefaultFakeThreshold is the suspicious weight sum at which a message
	// verdict escalates from SUSPICIOUS to FAKE (four uniform keyword hits).
	DefaultFakeThreshold = 48

	// NeutralMessageScore is reported for messages where no indicator fired.
	NeutralMessageScore = 95
)

// Document statuses.
const (
	StatusVerified   = "verified"
	StatusSuspicious = "suspicious"
	StatusFake       = "fake"
)

// Message verdicts.
const (
	VerdictReal       = "REAL"
	VerdictSuspicious = "SUSPICIOUS"
	VerdictFake       = "FAKE"
)

// Aggregate computes the trust score from an indicator list:
// clamp(100 - sum(suspicious weights) + sum(benign weights), 0, 100).
// Summation is commutative, so the score is invariant under reordering.
func Aggregate(indicators []signal.Indicator) int {
	score := MaxScore
	for _, ind := range indicators {
		switch ind.Polarity {
		case signal.Suspicious:
			score -= ind.Weight
		case signal.Benign:
			score += ind.Weight
		}
	}
	return clamp(score)
}

// SuspiciousWeight sums the weights of suspicious indicators.
func SuspiciousWeight(indicators []signal.Indicator) int {
	total := 0
	for _, ind := range indicators {
		if ind.Polarity == signal.Suspicious {
			total += ind.Weight
		}
	}
	return total
}

// DocumentStatus maps a document trust score to its verdict tier.
func DocumentStatus(score int) string {
	switch {
	case score >= VerifiedThreshold:
		return StatusVerified
	case score >= SuspiciousThreshold:
		return StatusSuspicious
	default:
		return StatusFake
	}
}

// MessageVerdict classifies a message from its indicator list. Any suspicious
// indicator rules out REAL; crossing the fake threshold escalates to FAKE.
func MessageVerdict(indicators []signal.Indicator, fakeThreshold int) string {
	if fakeThreshold <= 0 {
		fakeThreshold = DefaultFakeThreshold
	}
	weight := SuspiciousWeight(indicators)
	switch {
	case weight == 0:
		return VerdictReal
	case weight >= fakeThreshold:
		return VerdictFake
	default:
		return VerdictSuspicious
	}
}

// MessageConfidence reports the confidence attached to a message verdict.
// With no indicators at all the score stays at the neutral baseline.
func MessageConfidence(indicators []signal.Indicator) int {
	if len(indicators) == 0 {
		return NeutralMessageScore
	}
	return Aggregate(indicators)
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
