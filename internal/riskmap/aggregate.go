package riskmap

import (
	"gram-rakshak/backend/internal/store"
)

// Risk tiers mirror the document trust thresholds, inverted: a village score
// counts accumulated fraud evidence, higher is worse.
const (
	HighThreshold   = 70
	MediumThreshold = 40

	reportWeight = 5
	maxScore     = 100
)

const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// VillageRisk is one row of the district risk map.
type VillageRisk struct {
	Village string `json:"village"`
	Risk    string `json:"risk"`
	Score   int    `json:"score"`
	Reports int    `json:"reports"`
}

// Score converts a village's report count into a bounded risk score.
func Score(reports int) int {
	if reports <= 0 {
		return 0
	}
	score := reports * reportWeight
	if score > maxScore {
		score = maxScore
	}
	return score
}

// Tier maps a risk score to its colour tier. Boundaries are inclusive on the
// riskier side.
func Tier(score int) string {
	switch {
	case score >= HighThreshold:
		return TierHigh
	case score >= MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Build turns per-village report counts into risk-map rows.
func Build(counts []store.VillageReportCount) []VillageRisk {
	out := make([]VillageRisk, 0, len(counts))
	for _, row := range counts {
		score := Score(row.Reports)
		out = append(out, VillageRisk{
			Village: row.Village,
			Risk:    Tier(score),
			Score:   score,
			Reports: row.Reports,
		})
	}
	return out
}
