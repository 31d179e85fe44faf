package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Extractor exposes OCR text extraction for document references.
type Extractor interface {
	Enabled() bool
	Extract(ctx context.Context, ref string) (string, error)
}

// TamperAnalyzer exposes document forensics: given a document reference it
// returns the names of any tamper indicators found.
type TamperAnalyzer interface {
	Tamper(ctx context.Context, ref string) ([]string, error)
}

// Config holds OCR service configuration parameters.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ErrDisabled is returned when no OCR service is configured.
var ErrDisabled = errors.New("ocr service disabled")

// ErrExtraction marks unreadable input; callers recover locally.
var ErrExtraction = errors.New("ocr extraction failed")

// Client implements Extractor and TamperAnalyzer against the document
// intelligence HTTP service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrDisabled
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://docai.gramrakshak.gov.in/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Extract runs OCR against the referenced document and returns plain text.
func (c *Client) Extract(ctx context.Context, ref string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	var decoded struct {
		Text     string `json:"text"`
		Readable bool   `json:"readable"`
	}
	if err := c.post(ctx, "/ocr/extract", ref, &decoded); err != nil {
		return "", err
	}
	if !decoded.Readable {
		return "", fmt.Errorf("%w: document ref %s unreadable", ErrExtraction, ref)
	}
	return decoded.Text, nil
}

// Tamper runs forensic analysis against the referenced document.
func (c *Client) Tamper(ctx context.Context, ref string) ([]string, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	var decoded struct {
		Indicators []string `json:"indicators"`
	}
	if err := c.post(ctx, "/forensics/tamper", ref, &decoded); err != nil {
		return nil, err
	}
	return decoded.Indicators, nil
}

func (c *Client) post(ctx context.Context, path, ref string, out any) error {
	body, err := json.Marshal(map[string]string{"document_ref": ref})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ocr status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ocr response: %w", err)
	}
	return nil
}
