package signal

import (
	"context"
	"errors"
	"testing"

	"gram-rakshak/backend/internal/registry"
	"gram-rakshak/backend/internal/subject"
)

type fakeRegistry struct {
	result registry.Result
	err    error
}

func (f *fakeRegistry) Lookup(_ context.Context, _ subject.DocumentType, identifier string) (registry.Result, error) {
	res := f.result
	res.Identifier = identifier
	return res, f.err
}

func documentSubject(t *testing.T, ocrText string) *subject.Subject {
	t.Helper()
	subj, err := subject.NormalizeDocument("uploads/doc.png", subject.DocAadhaar)
	if err != nil {
		t.Fatalf("normalize document: %v", err)
	}
	if ocrText != "" {
		subj.Document.ApplyOCR(ocrText)
	}
	return subj
}

func TestCrossReferenceExtractor(t *testing.T) {
	tests := []struct {
		name     string
		ocrText  string
		result   registry.Result
		want     string
		polarity Polarity
	}{
		{
			name:     "identifier missing",
			ocrText:  "no numbers here",
			want:     "identifier-missing",
			polarity: Suspicious,
		},
		{
			name:     "registry mismatch",
			ocrText:  "aadhaar 1234 5678 9012",
			result:   registry.Result{Checked: true, Found: true, Matched: false},
			want:     "registry-mismatch",
			polarity: Suspicious,
		},
		{
			name:     "registry match",
			ocrText:  "aadhaar 1234 5678 9012",
			result:   registry.Result{Checked: true, Found: true, Matched: true},
			want:     "registry-match",
			polarity: Benign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewCrossReferenceExtractor(&fakeRegistry{result: tt.result})
			indicators, err := ex.Inspect(context.Background(), documentSubject(t, tt.ocrText))
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if len(indicators) != 1 {
				t.Fatalf("indicators = %v, want one", indicators)
			}
			if indicators[0].Name != tt.want || indicators[0].Polarity != tt.polarity {
				t.Fatalf("indicator = %+v, want %s/%s", indicators[0], tt.want, tt.polarity)
			}
		})
	}
}

func TestCrossReferenceUnchecked(t *testing.T) {
	ex := NewCrossReferenceExtractor(&fakeRegistry{result: registry.Result{Checked: false}})
	indicators, err := ex.Inspect(context.Background(), documentSubject(t, "aadhaar 1234 5678 9012"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(indicators) != 0 {
		t.Fatalf("indicators = %v, want none when registry was not consulted", indicators)
	}
}

func TestCrossReferenceLookupError(t *testing.T) {
	ex := NewCrossReferenceExtractor(&fakeRegistry{err: errors.New("registry down")})
	if _, err := ex.Inspect(context.Background(), documentSubject(t, "aadhaar 1234 5678 9012")); err == nil {
		t.Fatal("expected lookup error to surface")
	}
}

func TestCrossReferenceDisabled(t *testing.T) {
	ex := NewCrossReferenceExtractor(nil)
	indicators, err := ex.Inspect(context.Background(), documentSubject(t, "aadhaar 1234 5678 9012"))
	if err != nil || len(indicators) != 0 {
		t.Fatalf("indicators = %v err = %v, want disabled extractor to stay silent", indicators, err)
	}
}
