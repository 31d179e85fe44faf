package signal

import (
	"context"
	"fmt"

	"gram-rakshak/backend/internal/subject"
)

// SchemeNameWeight is the benign weight credited when a message references a
// known government scheme by name.
const SchemeNameWeight = 5

// SchemeMatcher looks up a government scheme referenced in free text.
// Implemented by the schemes catalog.
type SchemeMatcher interface {
	Match(text string) (name string, ok bool)
}

// SchemeNameExtractor emits a benign indicator when the message references a
// catalogued scheme. The matched name surfaces as relatedScheme downstream.
type SchemeNameExtractor struct {
	matcher SchemeMatcher
}

// NewSchemeNameExtractor wraps a scheme catalog. A nil matcher disables the
// extractor.
func NewSchemeNameExtractor(matcher SchemeMatcher) *SchemeNameExtractor {
	return &SchemeNameExtractor{matcher: matcher}
}

func (s *SchemeNameExtractor) Name() string { return "scheme-name" }

func (s *SchemeNameExtractor) Inspect(_ context.Context, subj *subject.Subject) ([]Indicator, error) {
	if s == nil || s.matcher == nil || subj == nil || subj.Kind != subject.KindMessage || subj.Message == nil {
		return nil, nil
	}
	name, ok := s.matcher.Match(subj.Message.Text)
	if !ok {
		return nil, nil
	}
	return []Indicator{{
		Name:     "scheme:" + name,
		Weight:   SchemeNameWeight,
		Polarity: Benign,
		Detail:   fmt.Sprintf("references government scheme %s", name),
	}}, nil
}
