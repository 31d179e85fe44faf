package scoring

import (
	"testing"

	"gram-rakshak/backend/internal/signal"
)

func suspicious(name string, weight int) signal.Indicator {
	return signal.Indicator{Name: name, Weight: weight, Polarity: signal.Suspicious}
}

func benign(name string, weight int) signal.Indicator {
	return signal.Indicator{Name: name, Weight: weight, Polarity: signal.Benign}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		indicators []signal.Indicator
		expected   int
	}{
		{"zero indicators", nil, 100},
		{"single suspicious", []signal.Indicator{suspicious("won", 12)}, 88},
		{"mixed", []signal.Indicator{suspicious("won", 12), benign("official-domain", 10)}, 98},
		{"clamped low", []signal.Indicator{suspicious("a", 60), suspicious("b", 60)}, 0},
		{"clamped high", []signal.Indicator{benign("registry-match", 10)}, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aggregate(tc.indicators); got != tc.expected {
				t.Fatalf("expected %d got %d", tc.expected, got)
			}
		})
	}
}

func TestAggregateOrderInvariant(t *testing.T) {
	indicators := []signal.Indicator{
		suspicious("won", 12),
		suspicious("deny-listed-domain", 35),
		benign("scheme:PM-KISAN", 5),
		suspicious("urgent", 12),
		benign("official-domain", 10),
	}

	want := Aggregate(indicators)
	perms := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, perm := range perms {
		shuffled := make([]signal.Indicator, len(indicators))
		for i, idx := range perm {
			shuffled[i] = indicators[idx]
		}
		if got := Aggregate(shuffled); got != want {
			t.Fatalf("reordered aggregate %d != %d", got, want)
		}
	}
}

func TestDocumentStatusBoundaries(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, StatusVerified},
		{70, StatusVerified},
		{69, StatusSuspicious},
		{40, StatusSuspicious},
		{39, StatusFake},
		{0, StatusFake},
	}
	for _, tc := range tests {
		if got := DocumentStatus(tc.score); got != tc.expected {
			t.Fatalf("score %d: expected %s got %s", tc.score, tc.expected, got)
		}
	}
}

func TestMessageVerdict(t *testing.T) {
	tests := []struct {
		name       string
		indicators []signal.Indicator
		threshold  int
		expected   string
	}{
		{"no indicators", nil, 0, VerdictReal},
		{"only benign", []signal.Indicator{benign("official-domain", 10)}, 0, VerdictReal},
		{"one suspicious", []signal.Indicator{suspicious("won", 12)}, 0, VerdictSuspicious},
		{"at fake threshold", []signal.Indicator{
			suspicious("won", 12), suspicious("lottery", 12),
			suspicious("click here", 12), suspicious("immediately", 12),
		}, 0, VerdictFake},
		{"below custom threshold", []signal.Indicator{suspicious("won", 12)}, 100, VerdictSuspicious},
		{"deny list crosses custom threshold", []signal.Indicator{suspicious("deny-listed-domain", 35)}, 35, VerdictFake},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MessageVerdict(tc.indicators, tc.threshold); got != tc.expected {
				t.Fatalf("expected %s got %s", tc.expected, got)
			}
		})
	}
}

func TestMessageConfidence(t *testing.T) {
	if got := MessageConfidence(nil); got != NeutralMessageScore {
		t.Fatalf("expected neutral %d got %d", NeutralMessageScore, got)
	}
	if got := MessageConfidence([]signal.Indicator{suspicious("won", 12)}); got != 88 {
		t.Fatalf("expected 88 got %d", got)
	}
}
