package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"gram-rakshak/backend/internal/subject"
)

// Config drives registry client behaviour.
type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Result describes the outcome of an authoritative registry lookup for a
// document identifier.
type Result struct {
	Identifier string
	Checked    bool
	Found      bool
	Matched    bool
	Holder     string
}

// Client performs registry lookups with basic caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cacheTTL   time.Duration
	cache      sync.Map // map[string]cacheEntry
}

type cacheEntry struct {
	at     time.Time
	result Result
}

// ErrMissingCredentials is returned when the client cannot authenticate.
var ErrMissingCredentials = errors.New("registry client missing api key")

// NewClient constructs a registry client if configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.digilocker.gov.in/public/registry/v1/verify"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		cacheTTL:   ttl,
	}, nil
}

// Lookup checks a document identifier against the authoritative registry.
func (c *Client) Lookup(ctx context.Context, docType subject.DocumentType, identifier string) (Result, error) {
	if c == nil {
		return Result{}, errors.New("registry client is nil")
	}

	key := strings.ToLower(strings.TrimSpace(identifier))
	if key == "" {
		return Result{}, nil
	}
	cacheKey := string(docType) + ":" + key

	if entry, ok := c.cache.Load(cacheKey); ok {
		cached := entry.(cacheEntry)
		if time.Since(cached.at) < c.cacheTTL {
			return cached.result, nil
		}
		c.cache.Delete(cacheKey)
	}

	result, err := c.performRequest(ctx, docType, key)
	if err != nil {
		return Result{}, err
	}

	c.cache.Store(cacheKey, cacheEntry{at: time.Now(), result: result})
	return result, nil
}

func (c *Client) performRequest(ctx context.Context, docType subject.DocumentType, identifier string) (Result, error) {
	params := url.Values{}
	params.Set("type", string(docType))
	params.Set("id", identifier)

	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint = endpoint + "&" + params.Encode()
	} else {
		endpoint = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("registry status %d", resp.StatusCode)
	}

	var decoded struct {
		Found  bool   `json:"found"`
		Match  bool   `json:"match"`
		Holder string `json:"holder"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode registry response: %w", err)
	}

	return Result{
		Identifier: identifier,
		Checked:    true,
		Found:      decoded.Found,
		Matched:    decoded.Found && decoded.Match,
		Holder:     strings.TrimSpace(decoded.Holder),
	}, nil
}
