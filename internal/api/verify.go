package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/scoring"
	"gram-rakshak/backend/internal/store"
	"gram-rakshak/backend/internal/subject"
	"gram-rakshak/backend/internal/verdict"
)

func (s *Server) handleVerifyDocument(c *gin.Context) {
	var req VerifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := s.verdicts.VerifyDocument(c.Request.Context(), verdict.DocumentRequest{
		Ref:    req.DocumentRef,
		Type:   subject.DocumentType(strings.ToLower(strings.TrimSpace(req.DocumentType))),
		UserID: strings.TrimSpace(req.UserID),
	})
	if err != nil {
		if errors.Is(err, subject.ErrInvalidSubject) {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	s.persistVerification(store.Verification{
		SubjectHash:      res.SubjectHash,
		Kind:             "document",
		UserID:           strings.TrimSpace(req.UserID),
		DocumentType:     strings.ToLower(strings.TrimSpace(req.DocumentType)),
		Score:            res.TrustScore,
		Verdict:          res.Status,
		Partial:          res.Partial,
		State:            string(res.State),
		CertificateID:    res.CertificateID,
		ProcessingTimeMs: res.ElapsedMs,
	}, res.FraudIndicators)

	s.notifier.Broadcast(Event{
		Type:    "verification",
		Kind:    "document",
		Verdict: res.Status,
		Score:   res.TrustScore,
	})

	s.respond(c, http.StatusOK, DocumentVerdictFromResult(res))
}

func (s *Server) handleCheckMessage(c *gin.Context) {
	var req CheckMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := s.verdicts.CheckMessage(c.Request.Context(), verdict.MessageRequest{
		Text:    req.MessageText,
		Channel: subject.Channel(strings.ToLower(strings.TrimSpace(req.Channel))),
		Sender:  strings.TrimSpace(req.SenderNumber),
	})
	if err != nil {
		if errors.Is(err, subject.ErrInvalidSubject) {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	s.persistVerification(store.Verification{
		SubjectHash:      res.SubjectHash,
		Kind:             "message",
		Channel:          strings.ToLower(strings.TrimSpace(req.Channel)),
		Score:            res.Confidence,
		Verdict:          res.Verdict,
		Partial:          res.Partial,
		State:            string(res.State),
		ProcessingTimeMs: res.ElapsedMs,
	}, res.Reasons)

	s.notifier.Broadcast(Event{
		Type:    "verification",
		Kind:    "message",
		Verdict: res.Verdict,
		Score:   res.Confidence,
	})

	s.respond(c, http.StatusOK, MessageVerdictFromResult(res))
}

func (s *Server) handleSMSVerify(c *gin.Context) {
	var req SMSVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := s.verdicts.CheckMessage(c.Request.Context(), verdict.MessageRequest{
		Text:    req.Message,
		Channel: subject.ChannelSMS,
		Sender:  strings.TrimSpace(req.PhoneNumber),
	})
	if err != nil {
		if errors.Is(err, subject.ErrInvalidSubject) {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	s.persistVerification(store.Verification{
		SubjectHash:      res.SubjectHash,
		Kind:             "message",
		Channel:          string(subject.ChannelSMS),
		Score:            res.Confidence,
		Verdict:          res.Verdict,
		Partial:          res.Partial,
		State:            string(res.State),
		ProcessingTimeMs: res.ElapsedMs,
	}, res.Reasons)

	s.respond(c, http.StatusOK, SMSVerifyDTO{
		Verdict:    res.Verdict,
		Confidence: res.Confidence,
		AutoReply:  smsAutoReply(res),
	})
}

// smsAutoReply composes the plain-text reply pushed back through the SMS
// gateway. Kept short; rural handsets truncate long messages.
func smsAutoReply(res verdict.MessageResult) string {
	switch res.Verdict {
	case scoring.VerdictFake:
		return fmt.Sprintf("GramRakshak: This message is FAKE (%d%% sure). Do not share OTP, bank details, or money.", res.Confidence)
	case scoring.VerdictSuspicious:
		return fmt.Sprintf("GramRakshak: This message looks SUSPICIOUS (%d%% sure). Confirm at your nearest CSC before acting.", res.Confidence)
	default:
		reply := fmt.Sprintf("GramRakshak: This message appears GENUINE (%d%% sure).", res.Confidence)
		if res.OfficialLink != "" {
			reply += " Official site: " + res.OfficialLink
		}
		return reply
	}
}

func (s *Server) handleListVerifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}

	rows, total, err := s.db.ListVerifications(store.VerificationQuery{
		Kind:    c.Query("kind"),
		Verdict: c.Query("verdict"),
		UserID:  c.Query("userId"),
		Offset:  page * pageSize,
		Limit:   pageSize,
	})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]VerificationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, VerificationFromModel(row))
	}
	s.respond(c, http.StatusOK, VerificationsResponse{Items: dtos, Total: total})
}

func (s *Server) handleListCertificates(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		s.fail(c, http.StatusBadRequest, errors.New("userId required"))
		return
	}

	rows, err := s.db.ListCertificates(userID)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]CertificateDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, CertificateFromModel(row))
	}
	s.respond(c, http.StatusOK, dtos)
}

// persistVerification records the outcome without blocking the response path.
// A failed write loses history, not the verdict the caller already has.
func (s *Server) persistVerification(row store.Verification, reasons []string) {
	row.SetReasons(reasons)
	if err := s.db.SaveVerification(&row); err != nil {
		logrus.WithError(err).WithField("subject_hash", row.SubjectHash).Warn("persist verification")
	}
}
