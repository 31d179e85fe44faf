package certs

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/cache"
	"gram-rakshak/backend/internal/store"
)

// ErrIssuance marks a certificate ledger failure. Unlike extractor failures
// this surfaces to the caller: a verified verdict without its promised
// certificate is a genuine failure.
var ErrIssuance = errors.New("certificate issuance failed")

// Issuer mints verification certificates against the ledger. Issuance is
// idempotent per subject content hash: re-verifying an identical subject
// returns the previously minted certificate.
type Issuer struct {
	db  *store.Database
	rdb *redis.Client
}

// NewIssuer constructs an issuer. The redis client is optional and only
// guards concurrent replicas; the ledger's unique index is authoritative.
func NewIssuer(db *store.Database, rdb *redis.Client) *Issuer {
	return &Issuer{db: db, rdb: rdb}
}

// Issue returns the certificate for the subject hash, minting one on first
// call. The returned certificate is identical across retries.
func (i *Issuer) Issue(ctx context.Context, subjectHash, userID, title string) (*store.Certificate, error) {
	if i == nil || i.db == nil {
		return nil, fmt.Errorf("%w: issuer not configured", ErrIssuance)
	}
	subjectHash = strings.TrimSpace(subjectHash)
	if subjectHash == "" {
		return nil, fmt.Errorf("%w: empty subject hash", ErrIssuance)
	}

	if existing, err := i.db.CertificateBySubject(subjectHash); err == nil && existing != nil {
		return existing, nil
	}

	reserved, err := cache.ReserveIssuance(ctx, i.rdb, subjectHash)
	if err != nil {
		logrus.WithError(err).Warn("issuance reservation unavailable; relying on ledger index")
	} else if reserved {
		defer cache.ReleaseIssuance(ctx, i.rdb, subjectHash)
	}

	now := time.Now().UTC()
	cert := &store.Certificate{
		CertID:      "CERT-" + strings.ToUpper(uuid.NewString()[:12]),
		SubjectHash: subjectHash,
		UserID:      strings.TrimSpace(userID),
		Title:       strings.TrimSpace(title),
		IssuedAt:    now,
	}
	cert.QRPayload = qrPayload(cert.CertID, subjectHash, now)

	stored, err := i.db.InsertCertificate(cert)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssuance, err)
	}
	return stored, nil
}

// qrPayload builds the opaque payload embedded in the certificate QR code.
// Verifiers recompute the digest from the certificate id and subject hash.
func qrPayload(certID, subjectHash string, issuedAt time.Time) string {
	digest := sha256.Sum256([]byte(certID + "|" + subjectHash + "|" + issuedAt.Format(time.RFC3339)))
	return "GRQR1:" + base64.RawURLEncoding.EncodeToString(digest[:])
}
