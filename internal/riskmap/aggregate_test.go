package riskmap

import (
	"testing"

	"gram-rakshak/backend/internal/store"
)

func TestScoreAndTier(t *testing.T) {
	tests := []struct {
		name    string
		reports int
		score   int
		tier    string
	}{
		{"no reports", 0, 0, TierLow},
		{"few reports", 2, 10, TierLow},
		{"medium boundary", 8, 40, TierMedium},
		{"high boundary", 14, 70, TierHigh},
		{"many reports", 15, 75, TierHigh},
		{"capped", 40, 100, TierHigh},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score := Score(tc.reports)
			if score != tc.score {
				t.Fatalf("expected score %d got %d", tc.score, score)
			}
			if tier := Tier(score); tier != tc.tier {
				t.Fatalf("expected tier %s got %s", tc.tier, tier)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	rows := Build([]store.VillageReportCount{
		{Village: "Gopalganj", Reports: 15},
		{Village: "Sitapur", Reports: 8},
		{Village: "Rampur", Reports: 2},
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows got %d", len(rows))
	}
	if rows[0].Risk != TierHigh || rows[1].Risk != TierMedium || rows[2].Risk != TierLow {
		t.Fatalf("unexpected tiers: %+v", rows)
	}
	if rows[0].Reports != 15 {
		t.Fatalf("report count lost: %+v", rows[0])
	}
}
