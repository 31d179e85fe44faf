package schemes

import (
	"errors"
	"testing"
	"time"
)

func testCatalog() *Catalog {
	return NewCatalogFromSchemes([]Scheme{
		{
			ID: "SCH001", Title: "PM-KISAN Yojana", Category: "Farmers",
			Deadline: "2027-01-15", Documents: []string{"Aadhaar", "Land Records"},
			Aliases: []string{"pm kisan"},
		},
		{
			ID: "SCH002", Title: "Ayushman Bharat", Category: "Health",
			Deadline: "Ongoing", Documents: []string{"Aadhaar", "Ration Card"},
			Aliases: []string{"pmjay"},
		},
	})
}

func TestListFiltersByCategory(t *testing.T) {
	catalog := testCatalog()
	if got := len(catalog.List("")); got != 2 {
		t.Fatalf("expected 2 schemes got %d", got)
	}
	farmers := catalog.List("farmers")
	if len(farmers) != 1 || farmers[0].ID != "SCH001" {
		t.Fatalf("unexpected filter result: %+v", farmers)
	}
	if got := len(catalog.List("transport")); got != 0 {
		t.Fatalf("expected no schemes got %d", got)
	}
}

func TestMatch(t *testing.T) {
	catalog := testCatalog()
	tests := []struct {
		name   string
		text   string
		expect string
		ok     bool
	}{
		{"hyphenated", "pm-kisan payment status update", "PM-KISAN Yojana", true},
		{"spaced alias", "your pm kisan installment arrived", "PM-KISAN Yojana", true},
		{"second scheme", "ayushman bharat card ready", "Ayushman Bharat", true},
		{"no scheme", "your parcel is waiting", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			name, ok := catalog.Match(tc.text)
			if ok != tc.ok || name != tc.expect {
				t.Fatalf("Match(%q) = %q,%v want %q,%v", tc.text, name, ok, tc.expect, tc.ok)
			}
		})
	}
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2027, 1, 5, 10, 0, 0, 0, time.UTC)
	scheme := Scheme{Deadline: "2027-01-15"}
	if got := scheme.DaysLeft(now); got != 10 {
		t.Fatalf("expected 10 days got %d", got)
	}
	ongoing := Scheme{Deadline: "Ongoing"}
	if got := ongoing.DaysLeft(now); got != -1 {
		t.Fatalf("expected -1 for ongoing got %d", got)
	}
	past := Scheme{Deadline: "2026-01-01"}
	if got := past.DaysLeft(now); got != 0 {
		t.Fatalf("expected 0 for past deadline got %d", got)
	}
}

func TestBuildPack(t *testing.T) {
	catalog := testCatalog()
	pack, err := catalog.BuildPack("sch001")
	if err != nil {
		t.Fatalf("build pack: %v", err)
	}
	if pack.SchemeID != "SCH001" {
		t.Fatalf("unexpected scheme id %s", pack.SchemeID)
	}
	if len(pack.Checklist) != 2 || len(pack.CSCSteps) == 0 {
		t.Fatalf("incomplete pack: %+v", pack)
	}
	if pack.ApplicationID == "" {
		t.Fatal("expected application id")
	}

	if _, err := catalog.BuildPack("SCH999"); !errors.Is(err, ErrSchemeNotFound) {
		t.Fatalf("expected ErrSchemeNotFound got %v", err)
	}
}
