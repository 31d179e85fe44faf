package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/cache"
	"gram-rakshak/backend/internal/riskmap"
	"gram-rakshak/backend/internal/store"
)

func (s *Server) handleRiskMap(c *gin.Context) {
	district := strings.ToLower(strings.TrimSpace(c.Param("district")))
	if district == "" {
		s.fail(c, http.StatusBadRequest, errors.New("district required"))
		return
	}

	if cached, ok := cache.RiskMap(c.Request.Context(), s.rdb, district); ok {
		s.respond(c, http.StatusOK, json.RawMessage(cached))
		return
	}

	counts, err := s.db.VillageReportCounts(district)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	villages := riskmap.Build(counts)
	dto := RiskMapDTO{
		District:    district,
		Villages:    make([]riskVillageDTO, 0, len(villages)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, v := range villages {
		dto.Villages = append(dto.Villages, riskVillageDTO{
			Village: v.Village,
			Risk:    v.Risk,
			Score:   v.Score,
			Reports: v.Reports,
		})
	}

	if payload, err := json.Marshal(dto); err == nil {
		if err := cache.SetRiskMap(c.Request.Context(), s.rdb, district, payload); err != nil {
			logrus.WithError(err).WithField("district", district).Warn("cache risk map")
		}
	}

	s.respond(c, http.StatusOK, dto)
}

func (s *Server) handleCreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	report := store.FraudReport{
		Village:     req.Village,
		District:    req.District,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.db.CreateFraudReport(&report); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	s.notifier.Broadcast(Event{
		Type:     "report",
		District: report.District,
		Village:  report.Village,
	})

	s.respond(c, http.StatusCreated, ReportDTO{
		ID:        report.ID,
		Village:   report.Village,
		District:  report.District,
		Category:  report.Category,
		CreatedAt: report.CreatedAt,
	})
}
