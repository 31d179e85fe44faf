package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gram-rakshak/backend/internal/subject"
)

// DefaultPhraseWeight applies to red-flag phrases configured without an
// explicit weight.
const DefaultPhraseWeight = 12

// KeywordExtractor scans canonical message text for configured red-flag
// phrases. Each match emits one suspicious indicator named after the phrase.
type KeywordExtractor struct {
	phrases map[string]int
	order   []string
}

// NewKeywordExtractor loads the phrase-to-weight map from a JSON file.
// A zero or negative configured weight falls back to DefaultPhraseWeight.
func NewKeywordExtractor(path string) (*KeywordExtractor, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read red-flag phrases: %w", err)
	}
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal red-flag phrases: %w", err)
	}
	return KeywordExtractorFromMap(raw), nil
}

// KeywordExtractorFromMap builds an extractor from an in-memory phrase map.
func KeywordExtractorFromMap(raw map[string]int) *KeywordExtractor {
	phrases := make(map[string]int, len(raw))
	var order []string
	for phrase, weight := range raw {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if weight <= 0 {
			weight = DefaultPhraseWeight
		}
		if _, ok := phrases[phrase]; !ok {
			order = append(order, phrase)
		}
		phrases[phrase] = weight
	}
	sort.Strings(order)
	return &KeywordExtractor{phrases: phrases, order: order}
}

// DefaultRedFlags returns the baseline phrase set used when no config file is
// supplied.
func DefaultRedFlags() map[string]int {
	return map[string]int{
		"urgent":      0,
		"immediately": 0,
		"suspended":   0,
		"click here":  0,
		"verify now":  0,
		"won":         0,
		"lottery":     0,
	}
}

func (k *KeywordExtractor) Name() string { return "keyword" }

// Inspect matches phrases case-insensitively as substrings of the canonical
// text. Match order is deterministic (sorted phrase order).
func (k *KeywordExtractor) Inspect(_ context.Context, subj *subject.Subject) ([]Indicator, error) {
	if k == nil || subj == nil || subj.Kind != subject.KindMessage || subj.Message == nil {
		return nil, nil
	}
	text := subj.Message.Text
	var out []Indicator
	for _, phrase := range k.order {
		if !strings.Contains(text, phrase) {
			continue
		}
		out = append(out, Indicator{
			Name:     phrase,
			Weight:   k.phrases[phrase],
			Polarity: Suspicious,
			Detail:   fmt.Sprintf("red-flag phrase %q detected", phrase),
		})
	}
	return out, nil
}
