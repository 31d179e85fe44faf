package signal

import (
	"context"
	"fmt"

	"gram-rakshak/backend/internal/registry"
	"gram-rakshak/backend/internal/subject"
)

// Cross-reference indicator weights. A registry mismatch or missing record is
// strong evidence; a confirmed record vouches for the document.
const (
	CrossRefMismatchWeight = 35
	CrossRefMatchWeight    = 10
)

// RegistryLookup checks document identifiers against an authoritative
// registry. Implemented by registry.Client.
type RegistryLookup interface {
	Lookup(ctx context.Context, docType subject.DocumentType, identifier string) (registry.Result, error)
}

// CrossReferenceExtractor verifies the identifier extracted from OCR text
// against the registry. A nil lookup disables the extractor.
type CrossReferenceExtractor struct {
	lookup RegistryLookup
}

// NewCrossReferenceExtractor wraps a registry collaborator.
func NewCrossReferenceExtractor(lookup RegistryLookup) *CrossReferenceExtractor {
	return &CrossReferenceExtractor{lookup: lookup}
}

func (c *CrossReferenceExtractor) Name() string { return "cross-reference" }

func (c *CrossReferenceExtractor) Inspect(ctx context.Context, subj *subject.Subject) ([]Indicator, error) {
	if c == nil || c.lookup == nil || subj == nil || subj.Kind != subject.KindDocument || subj.Document == nil {
		return nil, nil
	}

	doc := subj.Document
	if doc.Identifier == "" {
		// Nothing to cross-reference; OCR found no identifier in the text.
		return []Indicator{{
			Name:     "identifier-missing",
			Weight:   CrossRefMismatchWeight,
			Polarity: Suspicious,
			Detail:   fmt.Sprintf("no %s identifier found in document text", doc.Type),
		}}, nil
	}

	result, err := c.lookup.Lookup(ctx, doc.Type, doc.Identifier)
	if err != nil {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}
	if !result.Checked {
		return nil, nil
	}
	if !result.Matched {
		return []Indicator{{
			Name:     "registry-mismatch",
			Weight:   CrossRefMismatchWeight,
			Polarity: Suspicious,
			Detail:   fmt.Sprintf("identifier %s not confirmed by registry", doc.Identifier),
		}}, nil
	}
	return []Indicator{{
		Name:     "registry-match",
		Weight:   CrossRefMatchWeight,
		Polarity: Benign,
		Detail:   "registry record confirmed",
	}}, nil
}
