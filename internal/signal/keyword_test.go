package signal

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gram-rakshak/backend/internal/subject"
)

func messageSubject(t *testing.T, text string) *subject.Subject {
	t.Helper()
	subj, err := subject.NormalizeMessage(text, subject.ChannelSMS, "")
	if err != nil {
		t.Fatalf("normalize message: %v", err)
	}
	return subj
}

func TestKeywordExtractor(t *testing.T) {
	ex := KeywordExtractorFromMap(DefaultRedFlags())

	tests := []struct {
		name        string
		text        string
		wantPhrases []string
	}{
		{
			name:        "single phrase",
			text:        "please verify now to continue",
			wantPhrases: []string{"verify now"},
		},
		{
			name:        "case insensitive",
			text:        "URGENT: your account is SUSPENDED",
			wantPhrases: []string{"suspended", "urgent"},
		},
		{
			name:        "multi word phrase",
			text:        "you won a prize, click here today",
			wantPhrases: []string{"click here", "won"},
		},
		{
			name: "clean text",
			text: "your pm-kisan installment has been credited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indicators, err := ex.Inspect(context.Background(), messageSubject(t, tt.text))
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			var got []string
			for _, ind := range indicators {
				if ind.Polarity != Suspicious {
					t.Errorf("indicator %s polarity = %s, want suspicious", ind.Name, ind.Polarity)
				}
				if ind.Weight != DefaultPhraseWeight {
					t.Errorf("indicator %s weight = %d, want %d", ind.Name, ind.Weight, DefaultPhraseWeight)
				}
				got = append(got, ind.Name)
			}
			if !reflect.DeepEqual(got, tt.wantPhrases) {
				t.Fatalf("phrases = %v, want %v", got, tt.wantPhrases)
			}
		})
	}
}

func TestKeywordExtractorIgnoresDocuments(t *testing.T) {
	ex := KeywordExtractorFromMap(DefaultRedFlags())
	subj, err := subject.NormalizeDocument("uploads/doc.png", subject.DocAadhaar)
	if err != nil {
		t.Fatalf("normalize document: %v", err)
	}
	indicators, err := ex.Inspect(context.Background(), subj)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(indicators) != 0 {
		t.Fatalf("expected no indicators for document subject, got %v", indicators)
	}
}

func TestNewKeywordExtractorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.json")
	if err := os.WriteFile(path, []byte(`{"processing fee": 20, "lottery": 0}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ex, err := NewKeywordExtractor(path)
	if err != nil {
		t.Fatalf("NewKeywordExtractor: %v", err)
	}

	indicators, err := ex.Inspect(context.Background(), messageSubject(t, "pay the processing fee to claim your lottery"))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(indicators) != 2 {
		t.Fatalf("indicators = %v, want 2", indicators)
	}
	if indicators[0].Name != "lottery" || indicators[0].Weight != DefaultPhraseWeight {
		t.Errorf("indicator[0] = %+v, want lottery at default weight", indicators[0])
	}
	if indicators[1].Name != "processing fee" || indicators[1].Weight != 20 {
		t.Errorf("indicator[1] = %+v, want processing fee at weight 20", indicators[1])
	}
}

func TestNewKeywordExtractorMissingFile(t *testing.T) {
	if _, err := NewKeywordExtractor(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing phrase file")
	}
}
