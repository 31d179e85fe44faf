package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gram-rakshak/backend/internal/subject"
)

// Default link indicator weights. Deny-listed domains are strong scam
// evidence; unknown domains are mildly suspicious; official domains vouch
// for the message.
const (
	DenyListWeight = 35
	UnknownWeight  = 15
	OfficialWeight = 10
)

// ReputationList holds the allow/deny domain sets consulted for message links.
type ReputationList struct {
	Official []string `json:"official"`
	Deny     []string `json:"deny"`
}

// LinkReputationExtractor checks every URL in a message against the domain
// reputation lists.
type LinkReputationExtractor struct {
	official map[string]struct{}
	deny     map[string]struct{}
}

// NewLinkReputationExtractor loads reputation lists from a JSON file.
func NewLinkReputationExtractor(path string) (*LinkReputationExtractor, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read domain reputation: %w", err)
	}
	var list ReputationList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal domain reputation: %w", err)
	}
	return LinkReputationExtractorFromList(list), nil
}

// LinkReputationExtractorFromList builds an extractor from in-memory lists.
func LinkReputationExtractorFromList(list ReputationList) *LinkReputationExtractor {
	toSet := func(items []string) map[string]struct{} {
		set := make(map[string]struct{}, len(items))
		for _, item := range items {
			host := subject.Host(item)
			if host != "" {
				set[host] = struct{}{}
			}
		}
		return set
	}
	return &LinkReputationExtractor{official: toSet(list.Official), deny: toSet(list.Deny)}
}

// DefaultReputation is the baseline list used when no config file is supplied.
func DefaultReputation() ReputationList {
	return ReputationList{
		Official: []string{
			"india.gov.in",
			"pmkisan.gov.in",
			"pmjay.gov.in",
			"uidai.gov.in",
			"digilocker.gov.in",
			"mygov.in",
		},
	}
}

func (l *LinkReputationExtractor) Name() string { return "link-reputation" }

func (l *LinkReputationExtractor) Inspect(_ context.Context, subj *subject.Subject) ([]Indicator, error) {
	if l == nil || subj == nil || subj.Kind != subject.KindMessage || subj.Message == nil {
		return nil, nil
	}
	var out []Indicator
	seen := make(map[string]struct{})
	for _, raw := range subj.Message.URLs {
		host := subject.Host(raw)
		if host == "" {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}

		switch {
		case l.matches(l.deny, host):
			out = append(out, Indicator{
				Name:     "deny-listed-domain",
				Weight:   DenyListWeight,
				Polarity: Suspicious,
				Detail:   fmt.Sprintf("link points to deny-listed domain %s", host),
			})
		case l.matches(l.official, host):
			out = append(out, Indicator{
				Name:     "official-domain",
				Weight:   OfficialWeight,
				Polarity: Benign,
				Detail:   fmt.Sprintf("link points to official domain %s", host),
			})
		default:
			out = append(out, Indicator{
				Name:     "unknown-domain",
				Weight:   UnknownWeight,
				Polarity: Suspicious,
				Detail:   fmt.Sprintf("link points to unrecognised domain %s", host),
			})
		}
	}
	return out, nil
}

// matches reports whether host equals a listed domain or is a subdomain of one.
func (l *LinkReputationExtractor) matches(set map[string]struct{}, host string) bool {
	if _, ok := set[host]; ok {
		return true
	}
	for listed := range set {
		if strings.HasSuffix(host, "."+listed) {
			return true
		}
	}
	return false
}
