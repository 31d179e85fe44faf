package signal

import (
	"context"
	"fmt"

	"gram-rakshak/backend/internal/ocr"
	"gram-rakshak/backend/internal/subject"
)

// TamperWeight is the suspicious weight per reported tamper indicator.
const TamperWeight = 30

// TamperExtractor forwards documents to the forensics collaborator and turns
// reported findings into suspicious indicators. An unconfigured analyzer
// contributes nothing.
type TamperExtractor struct {
	analyzer ocr.TamperAnalyzer
}

// NewTamperExtractor wraps a forensics collaborator. A nil analyzer disables
// the extractor.
func NewTamperExtractor(analyzer ocr.TamperAnalyzer) *TamperExtractor {
	return &TamperExtractor{analyzer: analyzer}
}

func (t *TamperExtractor) Name() string { return "tamper" }

func (t *TamperExtractor) Inspect(ctx context.Context, subj *subject.Subject) ([]Indicator, error) {
	if t == nil || t.analyzer == nil || subj == nil || subj.Kind != subject.KindDocument || subj.Document == nil {
		return nil, nil
	}
	findings, err := t.analyzer.Tamper(ctx, subj.Document.Ref)
	if err != nil {
		return nil, fmt.Errorf("tamper analysis: %w", err)
	}
	var out []Indicator
	for _, finding := range findings {
		if finding == "" {
			continue
		}
		out = append(out, Indicator{
			Name:     finding,
			Weight:   TamperWeight,
			Polarity: Suspicious,
			Detail:   finding,
		})
	}
	return out, nil
}
