package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gram-rakshak/backend/internal/schemes"
)

func (s *Server) handleListSchemes(c *gin.Context) {
	now := time.Now().UTC()
	list := s.catalog.List(c.Query("category"))
	dtos := make([]SchemeDTO, 0, len(list))
	for _, scheme := range list {
		dtos = append(dtos, SchemeDTO{Scheme: scheme, DaysLeft: scheme.DaysLeft(now)})
	}
	s.respond(c, http.StatusOK, dtos)
}

func (s *Server) handleCreateApplication(c *gin.Context) {
	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	pack, err := s.catalog.BuildPack(req.SchemeID)
	if err != nil {
		if errors.Is(err, schemes.ErrSchemeNotFound) {
			s.fail(c, http.StatusNotFound, err)
		} else {
			s.fail(c, http.StatusInternalServerError, err)
		}
		return
	}
	s.respond(c, http.StatusCreated, pack)
}
