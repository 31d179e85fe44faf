package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Verification is the persisted outcome of a document or message check.
// Rows are keyed by subject content hash, so re-submitting an identical
// subject updates in place instead of accumulating duplicates.
type Verification struct {
	ID               uint   `gorm:"primaryKey"`
	SubjectHash      string `gorm:"size:64;uniqueIndex"`
	Kind             string `gorm:"size:16;index"`
	UserID           string `gorm:"size:64;index"`
	DocumentType     string `gorm:"size:16"`
	Channel          string `gorm:"size:16"`
	Score            int    `gorm:"index"`
	Verdict          string `gorm:"size:16;index"`
	ReasonsJSON      string `gorm:"type:text"`
	Partial          bool
	State            string `gorm:"size:16"`
	CertificateID    string `gorm:"size:64"`
	ProcessingTimeMs int64
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time
}

// SetReasons persists the reason list as JSON.
func (v *Verification) SetReasons(reasons []string) {
	if reasons == nil {
		v.ReasonsJSON = "[]"
		return
	}
	payload, _ := json.Marshal(reasons)
	v.ReasonsJSON = string(payload)
}

// Reasons returns the decoded reason list.
func (v *Verification) Reasons() []string {
	if strings.TrimSpace(v.ReasonsJSON) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.ReasonsJSON), &out); err != nil {
		return nil
	}
	return out
}

// Certificate is a ledger entry for an issued verification certificate.
// Immutable once written; never revoked. SubjectHash carries the idempotency
// key so a retried verified response can never double-issue.
type Certificate struct {
	ID          uint   `gorm:"primaryKey"`
	CertID      string `gorm:"size:64;uniqueIndex"`
	SubjectHash string `gorm:"size:64;uniqueIndex"`
	UserID      string `gorm:"size:64;index"`
	Title       string `gorm:"size:128"`
	QRPayload   string `gorm:"type:text"`
	IssuedAt    time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// FraudReport records a citizen fraud report; the village risk map is
// aggregated from these rows.
type FraudReport struct {
	ID          uint      `gorm:"primaryKey"`
	Village     string    `gorm:"size:128;index"`
	District    string    `gorm:"size:128;index"`
	Category    string    `gorm:"size:64;index"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
