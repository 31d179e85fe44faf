package schemes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scheme describes one government scheme in the catalog.
type Scheme struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	TitleHi     string   `json:"title_hi"`
	Category    string   `json:"category"`
	Deadline    string   `json:"deadline"`
	Amount      string   `json:"amount"`
	Description string   `json:"description"`
	Eligibility []string `json:"eligibility"`
	Documents   []string `json:"documents"`
	OfficialURL string   `json:"official_url"`
	Aliases     []string `json:"aliases,omitempty"`
}

// ApplicationPack is the generated submission bundle for a scheme.
type ApplicationPack struct {
	ApplicationID string   `json:"application_id"`
	SchemeID      string   `json:"scheme_id"`
	SchemeTitle   string   `json:"scheme_title"`
	Checklist     []string `json:"checklist"`
	CSCSteps      []string `json:"csc_steps"`
	Deadline      string   `json:"deadline"`
}

// Catalog holds the scheme list plus a normalized alias index for
// free-text matching.
type Catalog struct {
	schemes []Scheme
	aliases []aliasEntry
}

type aliasEntry struct {
	squashed string
	title    string
}

// ErrSchemeNotFound is returned when an application targets an unknown scheme.
var ErrSchemeNotFound = errors.New("scheme not found")

// NewCatalog loads the scheme catalog from a JSON file.
func NewCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scheme catalog: %w", err)
	}
	var schemes []Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, fmt.Errorf("unmarshal scheme catalog: %w", err)
	}
	return NewCatalogFromSchemes(schemes), nil
}

// NewCatalogFromSchemes builds a catalog from in-memory schemes.
func NewCatalogFromSchemes(schemes []Scheme) *Catalog {
	c := &Catalog{schemes: schemes}
	for _, scheme := range schemes {
		names := append([]string{scheme.Title}, scheme.Aliases...)
		for _, name := range names {
			squashed := squash(name)
			if squashed == "" {
				continue
			}
			c.aliases = append(c.aliases, aliasEntry{squashed: squashed, title: scheme.Title})
		}
	}
	return c
}

// List returns schemes, optionally filtered by category (case-insensitive).
func (c *Catalog) List(category string) []Scheme {
	if c == nil {
		return nil
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		out := make([]Scheme, len(c.schemes))
		copy(out, c.schemes)
		return out
	}
	var out []Scheme
	for _, scheme := range c.schemes {
		if strings.ToLower(scheme.Category) == category {
			out = append(out, scheme)
		}
	}
	return out
}

// Get returns the scheme with the given id.
func (c *Catalog) Get(id string) (Scheme, error) {
	if c != nil {
		for _, scheme := range c.schemes {
			if strings.EqualFold(scheme.ID, strings.TrimSpace(id)) {
				return scheme, nil
			}
		}
	}
	return Scheme{}, fmt.Errorf("%w: %s", ErrSchemeNotFound, id)
}

// OfficialLink returns the official URL of the scheme with the given title,
// or "" when the title is not catalogued.
func (c *Catalog) OfficialLink(title string) string {
	if c != nil {
		for _, scheme := range c.schemes {
			if strings.EqualFold(scheme.Title, title) {
				return scheme.OfficialURL
			}
		}
	}
	return ""
}

// Match reports whether free text references a catalogued scheme by title or
// alias. Matching squashes punctuation so "pm kisan" hits "PM-KISAN".
func (c *Catalog) Match(text string) (string, bool) {
	if c == nil {
		return "", false
	}
	squashed := squash(text)
	if squashed == "" {
		return "", false
	}
	for _, entry := range c.aliases {
		if strings.Contains(squashed, entry.squashed) {
			return entry.title, true
		}
	}
	return "", false
}

// DaysLeft returns whole days until the scheme deadline, or -1 for ongoing
// schemes and unparseable deadlines.
func (s Scheme) DaysLeft(now time.Time) int {
	deadline, err := time.Parse("2006-01-02", strings.TrimSpace(s.Deadline))
	if err != nil {
		return -1
	}
	days := int(deadline.Sub(now.Truncate(24*time.Hour)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

var cscSteps = []string{
	"Visit nearest CSC center",
	"Show this application ID",
	"Submit documents from checklist",
	"Get acknowledgment receipt",
}

// BuildPack generates the application pack for a scheme.
func (c *Catalog) BuildPack(schemeID string) (ApplicationPack, error) {
	scheme, err := c.Get(schemeID)
	if err != nil {
		return ApplicationPack{}, err
	}
	checklist := make([]string, 0, len(scheme.Documents))
	for _, doc := range scheme.Documents {
		checklist = append(checklist, doc+" (Original + Photocopy)")
	}
	return ApplicationPack{
		ApplicationID: "APP-" + strings.ToUpper(uuid.NewString()[:8]),
		SchemeID:      scheme.ID,
		SchemeTitle:   scheme.Title,
		Checklist:     checklist,
		CSCSteps:      append([]string{}, cscSteps...),
		Deadline:      scheme.Deadline,
	}, nil
}

// squash lowercases and drops everything but letters and digits, so alias
// matching ignores spacing and punctuation variants.
func squash(in string) string {
	var b strings.Builder
	b.Grow(len(in))
	for _, r := range strings.ToLower(in) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
