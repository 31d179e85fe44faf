package subject

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalidSubject is returned when a submitted subject is missing required fields.
var ErrInvalidSubject = errors.New("invalid subject")

// Kind discriminates the two subject families.
type Kind string

const (
	KindDocument Kind = "document"
	KindMessage  Kind = "message"
)

// DocumentType is the declared type of a submitted document.
type DocumentType string

const (
	DocAadhaar DocumentType = "aadhaar"
	DocPAN     DocumentType = "pan"
	DocLand    DocumentType = "land"
	DocOther   DocumentType = "other"
)

// Channel identifies the origin of a message subject.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

var (
	sanitizer  = bluemonday.StrictPolicy()
	whitespace = regexp.MustCompile(`\s+`)
	// Bare domains need an alphabetic terminal label so decimal amounts
	// ("2.5") and clock times ("10.30am") do not read as hosts.
	urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+|\bwww\.[^\s<>"']+|\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9-]+)*\.[a-z]{2,}\b(?:/[^\s<>"']*)?`)

	aadhaarPattern = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
	panPattern     = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)
	landPattern    = regexp.MustCompile(`\b(?:khasra|survey)\s*(?:no\.?|number)?\s*[:#]?\s*(\d{1,6}(?:/\d{1,4})?)`)
)

// Message is the canonical form of a submitted SMS/WhatsApp message.
// Immutable once produced by NormalizeMessage.
type Message struct {
	Raw     string
	Text    string
	Channel Channel
	Sender  string
	URLs    []string
}

// Document is the canonical form of a submitted document. OCRText is filled
// by the OCR collaborator after normalization; the ref stays opaque.
type Document struct {
	Ref        string
	Type       DocumentType
	OCRText    string
	Identifier string
}

// Subject is the thing a verdict is produced for.
type Subject struct {
	Kind     Kind
	Message  *Message
	Document *Document
}

// NormalizeMessage canonicalizes raw message text: HTML stripped, entities
// decoded, lower-cased, whitespace collapsed, URLs extracted.
func NormalizeMessage(raw string, channel Channel, sender string) (*Subject, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrInvalidSubject)
	}
	switch channel {
	case ChannelSMS, ChannelWhatsApp:
	case "":
		channel = ChannelSMS
	default:
		return nil, fmt.Errorf("%w: unknown channel %q", ErrInvalidSubject, channel)
	}

	text := sanitizer.Sanitize(raw)
	text = html.UnescapeString(text)
	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespace.ReplaceAllString(text, " ")

	msg := &Message{
		Raw:     raw,
		Text:    text,
		Channel: channel,
		Sender:  strings.TrimSpace(sender),
		URLs:    extractURLs(text),
	}
	return &Subject{Kind: KindMessage, Message: msg}, nil
}

// NormalizeDocument validates the document reference and declared type.
// Unknown declared types fold into DocOther.
func NormalizeDocument(ref string, docType DocumentType) (*Subject, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: document reference is required", ErrInvalidSubject)
	}
	switch docType {
	case DocAadhaar, DocPAN, DocLand, DocOther:
	default:
		docType = DocOther
	}
	return &Subject{Kind: KindDocument, Document: &Document{Ref: ref, Type: docType}}, nil
}

// ApplyOCR attaches extracted text and derives the document identifier used
// for registry cross-reference.
func (d *Document) ApplyOCR(text string) {
	if d == nil {
		return
	}
	d.OCRText = strings.TrimSpace(text)
	d.Identifier = extractIdentifier(d.Type, d.OCRText)
}

// Fingerprint returns a stable content hash of the subject, used as the
// certificate idempotency key.
func (s *Subject) Fingerprint() string {
	if s == nil {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(s.Kind))
	h.Write([]byte{0})
	switch s.Kind {
	case KindMessage:
		if s.Message != nil {
			h.Write([]byte(s.Message.Channel))
			h.Write([]byte{0})
			h.Write([]byte(s.Message.Text))
		}
	case KindDocument:
		if s.Document != nil {
			h.Write([]byte(s.Document.Type))
			h.Write([]byte{0})
			h.Write([]byte(s.Document.Ref))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?)")
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Host strips scheme, credentials, port and path from a URL candidate.
func Host(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if idx := strings.LastIndex(host, "@"); idx >= 0 {
		host = host[idx+1:]
	}
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(host, sep); idx >= 0 {
			host = host[:idx]
		}
	}
	if idx := strings.IndexRune(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")
	return strings.Trim(host, ".")
}

func extractIdentifier(docType DocumentType, text string) string {
	if text == "" {
		return ""
	}
	switch docType {
	case DocAadhaar:
		if m := aadhaarPattern.FindString(text); m != "" {
			return strings.ReplaceAll(m, " ", "")
		}
	case DocPAN:
		return panPattern.FindString(strings.ToUpper(text))
	case DocLand:
		if m := landPattern.FindStringSubmatch(strings.ToLower(text)); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
