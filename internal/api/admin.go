package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleFraudStats(c *gin.Context) {
	total, err := s.db.CountFraudReports()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	byMonth, err := s.db.ReportsByMonth(6)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	byType, err := s.db.ReportsByType()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	byVerdict, err := s.db.VerificationsByVerdict("")
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	stats := FraudStatsDTO{
		TotalReports: total,
		ByMonth:      make([]monthStatDTO, 0, len(byMonth)),
		ByType:       make([]typeStatDTO, 0, len(byType)),
		ByVerdict:    make([]verdictStatDTO, 0, len(byVerdict)),
	}
	for _, row := range byMonth {
		stats.ByMonth = append(stats.ByMonth, monthStatDTO{Month: row.Month, Reports: row.Reports})
	}
	for _, row := range byType {
		stats.ByType = append(stats.ByType, typeStatDTO{Category: row.Category, Reports: row.Reports})
	}
	for _, row := range byVerdict {
		stats.ByVerdict = append(stats.ByVerdict, verdictStatDTO{Verdict: row.Verdict, Count: row.Count})
	}
	s.respond(c, http.StatusOK, stats)
}
