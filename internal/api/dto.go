package api

import (
	"time"

	"gram-rakshak/backend/internal/schemes"
	"gram-rakshak/backend/internal/store"
	"gram-rakshak/backend/internal/verdict"
)

// Envelope wraps every API response. Failures carry success:false with a
// non-empty error and no data.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// VerifyDocumentRequest is the document submission payload.
type VerifyDocumentRequest struct {
	DocumentRef  string `json:"documentRef"`
	DocumentType string `json:"documentType"`
	UserID       string `json:"userId"`
}

// DocumentVerdictDTO is the composed document verdict payload.
type DocumentVerdictDTO struct {
	TrustScore       int                `json:"trustScore"`
	Status           string             `json:"status"`
	Details          DocumentDetailsDTO `json:"details"`
	CertificateID    string             `json:"certificateId,omitempty"`
	QRCode           string             `json:"qrCode,omitempty"`
	PartialResult    bool               `json:"partialResult,omitempty"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// DocumentDetailsDTO carries the evidence behind a document verdict.
type DocumentDetailsDTO struct {
	OCRText           string   `json:"ocrText,omitempty"`
	FraudIndicators   []string `json:"fraudIndicators"`
	AuthenticityScore int      `json:"authenticityScore"`
}

// CheckMessageRequest is the message submission payload.
type CheckMessageRequest struct {
	MessageText  string `json:"messageText"`
	Channel      string `json:"channel"`
	SenderNumber string `json:"senderNumber"`
}

// MessageVerdictDTO is the composed message verdict payload.
type MessageVerdictDTO struct {
	Verdict          string   `json:"verdict"`
	Confidence       int      `json:"confidence"`
	Reasons          []string `json:"reasons"`
	OfficialLink     string   `json:"officialLink,omitempty"`
	RelatedScheme    string   `json:"relatedScheme,omitempty"`
	PartialResult    bool     `json:"partialResult,omitempty"`
	ProcessingTimeMs int64    `json:"processingTimeMs"`
}

// SMSVerifyRequest is the inbound SMS gateway payload.
type SMSVerifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// SMSVerifyDTO pairs the verdict with the auto-reply sent back over SMS.
type SMSVerifyDTO struct {
	Verdict    string `json:"verdict"`
	Confidence int    `json:"confidence"`
	AutoReply  string `json:"autoReply"`
}

// CreateReportRequest is a citizen fraud report submission.
type CreateReportRequest struct {
	Village     string `json:"village"`
	District    string `json:"district"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ReportDTO acknowledges a stored fraud report.
type ReportDTO struct {
	ID        uint      `json:"id"`
	Village   string    `json:"village"`
	District  string    `json:"district"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// RiskMapDTO is the per-district aggregation payload.
type RiskMapDTO struct {
	District    string           `json:"district"`
	Villages    []riskVillageDTO `json:"villages"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

type riskVillageDTO struct {
	Village string `json:"village"`
	Risk    string `json:"risk"`
	Score   int    `json:"score"`
	Reports int    `json:"reports"`
}

// SchemeDTO augments a catalogued scheme with its deadline countdown.
type SchemeDTO struct {
	schemes.Scheme
	DaysLeft int `json:"days_left"`
}

// CreateApplicationRequest requests an application pack for a scheme.
type CreateApplicationRequest struct {
	SchemeID string `json:"schemeId"`
}

// CertificateDTO is the ledger view of an issued certificate.
type CertificateDTO struct {
	CertID   string    `json:"certId"`
	Title    string    `json:"title"`
	QRCode   string    `json:"qrCode"`
	IssuedAt time.Time `json:"issuedAt"`
}

// VerificationDTO is the listing view of a persisted verification.
type VerificationDTO struct {
	ID               uint      `json:"id"`
	Kind             string    `json:"kind"`
	DocumentType     string    `json:"documentType,omitempty"`
	Channel          string    `json:"channel,omitempty"`
	Score            int       `json:"score"`
	Verdict          string    `json:"verdict"`
	Reasons          []string  `json:"reasons"`
	Partial          bool      `json:"partial,omitempty"`
	CertificateID    string    `json:"certificateId,omitempty"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
	CreatedAt        time.Time `json:"createdAt"`
}

// VerificationsResponse is the paginated verification listing.
type VerificationsResponse struct {
	Items []VerificationDTO `json:"items"`
	Total int64             `json:"total"`
}

// FraudStatsDTO is the admin dashboard aggregate payload.
type FraudStatsDTO struct {
	TotalReports int64            `json:"totalReports"`
	ByMonth      []monthStatDTO   `json:"byMonth"`
	ByType       []typeStatDTO    `json:"byType"`
	ByVerdict    []verdictStatDTO `json:"byVerdict"`
}

type monthStatDTO struct {
	Month   string `json:"month"`
	Reports int    `json:"reports"`
}

type typeStatDTO struct {
	Category string `json:"category"`
	Reports  int    `json:"reports"`
}

type verdictStatDTO struct {
	Verdict string `json:"verdict"`
	Count   int    `json:"count"`
}

// LanguageDTO describes one supported interface language.
type LanguageDTO struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native"`
}

// DocumentVerdictFromResult converts a pipeline result into the DTO form.
func DocumentVerdictFromResult(res verdict.DocumentResult) DocumentVerdictDTO {
	indicators := res.FraudIndicators
	if indicators == nil {
		indicators = []string{}
	}
	return DocumentVerdictDTO{
		TrustScore: res.TrustScore,
		Status:     res.Status,
		Details: DocumentDetailsDTO{
			OCRText:           res.OCRText,
			FraudIndicators:   indicators,
			AuthenticityScore: res.AuthenticityScore,
		},
		CertificateID:    res.CertificateID,
		QRCode:           res.QRCode,
		PartialResult:    res.Partial,
		ProcessingTimeMs: res.ElapsedMs,
	}
}

// MessageVerdictFromResult converts a pipeline result into the DTO form.
func MessageVerdictFromResult(res verdict.MessageResult) MessageVerdictDTO {
	reasons := res.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return MessageVerdictDTO{
		Verdict:          res.Verdict,
		Confidence:       res.Confidence,
		Reasons:          reasons,
		OfficialLink:     res.OfficialLink,
		RelatedScheme:    res.RelatedScheme,
		PartialResult:    res.Partial,
		ProcessingTimeMs: res.ElapsedMs,
	}
}

// VerificationFromModel converts a store row into the listing DTO.
func VerificationFromModel(v store.Verification) VerificationDTO {
	reasons := v.Reasons()
	if reasons == nil {
		reasons = []string{}
	}
	return VerificationDTO{
		ID:               v.ID,
		Kind:             v.Kind,
		DocumentType:     v.DocumentType,
		Channel:          v.Channel,
		Score:            v.Score,
		Verdict:          v.Verdict,
		Reasons:          reasons,
		Partial:          v.Partial,
		CertificateID:    v.CertificateID,
		ProcessingTimeMs: v.ProcessingTimeMs,
		CreatedAt:        v.CreatedAt,
	}
}

// CertificateFromModel converts a ledger row into the listing DTO.
func CertificateFromModel(cert store.Certificate) CertificateDTO {
	return CertificateDTO{
		CertID:   cert.CertID,
		Title:    cert.Title,
		QRCode:   cert.QRPayload,
		IssuedAt: cert.IssuedAt,
	}
}
