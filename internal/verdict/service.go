package verdict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/certs"
	"gram-rakshak/backend/internal/ocr"
	"gram-rakshak/backend/internal/scoring"
	"gram-rakshak/backend/internal/signal"
	"gram-rakshak/backend/internal/subject"
	"gram-rakshak/backend/internal/util"
)

// State tracks a request through the verdict pipeline. Terminal states are
// StateDelivered and StateFailed; there are no retries inside a request.
type State string

const (
	StateReceived   State = "received"
	StateNormalized State = "normalized"
	StateScored     State = "scored"
	StateComposed   State = "composed"
	StateDelivered  State = "delivered"
	StateFailed     State = "failed"
)

const (
	// DefaultExtractorTimeout bounds every collaborator-backed extractor call.
	DefaultExtractorTimeout = 3 * time.Second

	// DefaultOfficialLink is attached to REAL message verdicts when no
	// scheme-specific link applies.
	DefaultOfficialLink = "https://www.india.gov.in"
)

// Config tunes the verdict pipeline.
type Config struct {
	ExtractorTimeout time.Duration
	FakeThreshold    int
	OfficialLink     string
}

// LinkResolver resolves a matched scheme title to its official URL.
// Implemented by the schemes catalog.
type LinkResolver interface {
	OfficialLink(title string) string
}

// Service runs the verdict pipeline: normalize, extract signals concurrently,
// aggregate, compose. Stateless across requests.
type Service struct {
	cfg           Config
	ocr           ocr.Extractor
	docExtractors []signal.Extractor
	msgExtractors []signal.Extractor
	issuer        *certs.Issuer
	links         LinkResolver
}

// NewService wires the pipeline. The OCR extractor, issuer, and link resolver
// are optional; unset collaborators disable their features.
func NewService(cfg Config, ocrClient ocr.Extractor, docExtractors, msgExtractors []signal.Extractor, issuer *certs.Issuer, links LinkResolver) *Service {
	if cfg.ExtractorTimeout <= 0 {
		cfg.ExtractorTimeout = DefaultExtractorTimeout
	}
	if cfg.FakeThreshold <= 0 {
		cfg.FakeThreshold = scoring.DefaultFakeThreshold
	}
	if strings.TrimSpace(cfg.OfficialLink) == "" {
		cfg.OfficialLink = DefaultOfficialLink
	}
	return &Service{
		cfg:           cfg,
		ocr:           ocrClient,
		docExtractors: docExtractors,
		msgExtractors: msgExtractors,
		issuer:        issuer,
		links:         links,
	}
}

// DocumentRequest is a document verification submission.
type DocumentRequest struct {
	Ref    string
	Type   subject.DocumentType
	UserID string
}

// DocumentResult is the composed document verdict.
type DocumentResult struct {
	TrustScore        int
	Status            string
	OCRText           string
	FraudIndicators   []string
	AuthenticityScore int
	CertificateID     string
	QRCode            string
	Partial           bool
	SubjectHash       string
	State             State
	ElapsedMs         int64
}

// MessageRequest is a message check submission.
type MessageRequest struct {
	Text    string
	Channel subject.Channel
	Sender  string
}

// MessageResult is the composed message verdict.
type MessageResult struct {
	Verdict       string
	Confidence    int
	Reasons       []string
	OfficialLink  string
	RelatedScheme string
	Partial       bool
	SubjectHash   string
	State         State
	ElapsedMs     int64
}

var certTitles = map[subject.DocumentType]string{
	subject.DocAadhaar: "Aadhaar Verification",
	subject.DocPAN:     "PAN Verification",
	subject.DocLand:    "Land Record Verification",
	subject.DocOther:   "Document Verification",
}

// VerifyDocument runs the document pipeline end to end. Only invalid input
// and certificate issuance failures surface as errors; collaborator failures
// degrade to a partial verdict.
func (s *Service) VerifyDocument(ctx context.Context, req DocumentRequest) (DocumentResult, error) {
	timer := util.StartTimer()
	result := DocumentResult{State: StateReceived}

	subj, err := subject.NormalizeDocument(req.Ref, req.Type)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.State = StateNormalized
	result.SubjectHash = subj.Fingerprint()

	if s.ocr != nil && s.ocr.Enabled() {
		ocrCtx, cancel := context.WithTimeout(ctx, s.cfg.ExtractorTimeout)
		text, err := s.ocr.Extract(ocrCtx, subj.Document.Ref)
		cancel()
		switch {
		case err == nil:
			subj.Document.ApplyOCR(text)
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			logrus.WithError(err).WithField("ref", subj.Document.Ref).Warn("ocr timed out")
			result.Partial = true
		default:
			// ExtractionError and transport failures recover locally; the
			// remaining extractors judge the document without text.
			logrus.WithError(err).WithField("ref", subj.Document.Ref).Warn("ocr extraction failed")
		}
	}

	run := signal.Run(ctx, subj, s.docExtractors, s.cfg.ExtractorTimeout)
	result.Partial = result.Partial || run.Partial

	score := scoring.Aggregate(run.Indicators)
	result.TrustScore = score
	result.AuthenticityScore = score
	result.Status = scoring.DocumentStatus(score)
	result.State = StateScored

	result.OCRText = subj.Document.OCRText
	for _, ind := range run.Indicators {
		if ind.Polarity == signal.Suspicious {
			result.FraudIndicators = append(result.FraudIndicators, reason(ind))
		}
	}

	if result.Status == scoring.StatusVerified {
		if s.issuer == nil {
			logrus.Warn("certificate issuer not configured; verified document left uncertified")
		} else {
			cert, err := s.issuer.Issue(ctx, result.SubjectHash, req.UserID, certTitles[subj.Document.Type])
			if err != nil {
				result.State = StateFailed
				return result, fmt.Errorf("issue certificate: %w", err)
			}
			result.CertificateID = cert.CertID
			result.QRCode = cert.QRPayload
		}
	}
	result.State = StateComposed

	result.ElapsedMs = timer.ElapsedMs()
	result.State = StateDelivered
	return result, nil
}

// CheckMessage runs the message pipeline end to end.
func (s *Service) CheckMessage(ctx context.Context, req MessageRequest) (MessageResult, error) {
	timer := util.StartTimer()
	result := MessageResult{State: StateReceived}

	subj, err := subject.NormalizeMessage(req.Text, req.Channel, req.Sender)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.State = StateNormalized
	result.SubjectHash = subj.Fingerprint()

	run := signal.Run(ctx, subj, s.msgExtractors, s.cfg.ExtractorTimeout)
	result.Partial = run.Partial

	result.Verdict = scoring.MessageVerdict(run.Indicators, s.cfg.FakeThreshold)
	result.Confidence = scoring.MessageConfidence(run.Indicators)
	result.State = StateScored

	for _, ind := range run.Indicators {
		result.Reasons = append(result.Reasons, reason(ind))
		if scheme, ok := strings.CutPrefix(ind.Name, "scheme:"); ok && result.RelatedScheme == "" {
			result.RelatedScheme = scheme
		}
	}
	if len(result.Reasons) == 0 {
		result.Reasons = []string{"matches official communication pattern"}
	}

	if result.Verdict == scoring.VerdictReal {
		result.OfficialLink = s.cfg.OfficialLink
		if result.RelatedScheme != "" && s.links != nil {
			if link := s.links.OfficialLink(result.RelatedScheme); link != "" {
				result.OfficialLink = link
			}
		}
	}
	result.State = StateComposed

	result.ElapsedMs = timer.ElapsedMs()
	result.State = StateDelivered
	return result, nil
}

func reason(ind signal.Indicator) string {
	if strings.TrimSpace(ind.Detail) != "" {
		return ind.Detail
	}
	return ind.Name
}
