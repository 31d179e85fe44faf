package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"gram-rakshak/backend/internal/subject"
)

type fakeExtractor struct {
	name       string
	indicators []Indicator
	err        error
	delay      time.Duration
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Inspect(ctx context.Context, _ *subject.Subject) ([]Indicator, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.indicators, f.err
}

func TestRunPreservesRegistrationOrder(t *testing.T) {
	extractors := []Extractor{
		&fakeExtractor{
			name:       "first",
			delay:      50 * time.Millisecond,
			indicators: []Indicator{{Name: "a", Weight: 1, Polarity: Suspicious}},
		},
		&fakeExtractor{
			name:       "second",
			indicators: []Indicator{{Name: "b", Weight: 2, Polarity: Suspicious}, {Name: "c", Weight: 3, Polarity: Benign}},
		},
	}

	res := Run(context.Background(), messageSubject(t, "hello"), extractors, time.Second)
	if res.Partial {
		t.Fatal("unexpected partial result")
	}
	want := []string{"a", "b", "c"}
	if len(res.Indicators) != len(want) {
		t.Fatalf("indicators = %v, want %d entries", res.Indicators, len(want))
	}
	for i, name := range want {
		if res.Indicators[i].Name != name {
			t.Errorf("indicator[%d] = %s, want %s", i, res.Indicators[i].Name, name)
		}
	}
}

func TestRunTimedOutExtractorContributesNothing(t *testing.T) {
	extractors := []Extractor{
		&fakeExtractor{name: "slow", delay: 500 * time.Millisecond, indicators: []Indicator{{Name: "late"}}},
		&fakeExtractor{name: "fast", indicators: []Indicator{{Name: "ok", Weight: 5, Polarity: Benign}}},
	}

	res := Run(context.Background(), messageSubject(t, "hello"), extractors, 30*time.Millisecond)
	if !res.Partial {
		t.Fatal("expected partial result after timeout")
	}
	if len(res.Indicators) != 1 || res.Indicators[0].Name != "ok" {
		t.Fatalf("indicators = %v, want only the fast extractor's", res.Indicators)
	}
}

func TestRunFailedExtractorIsSkipped(t *testing.T) {
	extractors := []Extractor{
		&fakeExtractor{name: "broken", err: errors.New("upstream unavailable")},
		&fakeExtractor{name: "fine", indicators: []Indicator{{Name: "ok"}}},
	}

	res := Run(context.Background(), messageSubject(t, "hello"), extractors, time.Second)
	if res.Partial {
		t.Fatal("plain extractor failure must not mark the result partial")
	}
	if len(res.Indicators) != 1 || res.Indicators[0].Name != "ok" {
		t.Fatalf("indicators = %v, want only the healthy extractor's", res.Indicators)
	}
}

func TestRunNoExtractors(t *testing.T) {
	res := Run(context.Background(), messageSubject(t, "hello"), nil, time.Second)
	if res.Partial || len(res.Indicators) != 0 {
		t.Fatalf("result = %+v, want empty non-partial", res)
	}
}
