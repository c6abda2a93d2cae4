package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// handleListScores returns the score catalog
func (s *Server) handleListScores(c *gin.Context) {
	scores := s.advisor.ScoreEngine().ListScores()
	c.JSON(http.StatusOK, gin.H{
		"scores": scores,
		"count":  len(scores),
	})
}

// handleCalculateScore runs a single named calculator against the
// request body, which carries the calculator's parameters as JSON
func (s *Server) handleCalculateScore(c *gin.Context) {
	name := c.Param("name")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := s.advisor.ScoreEngine().Calculate(name, json.RawMessage(body))
	if err != nil {
		if errors.Is(err, domain.ErrUnknownScore) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleReason runs the full reasoning pipeline for a clinical question
func (s *Server) handleReason(c *gin.Context) {
	var params service.AdviseParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.advisor.Advise(c.Request.Context(), &params)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"correlation_id": c.GetString("correlation_id"),
			"error":          err.Error(),
		}).Warn("reasoning request rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleListAssessments pages through the stored assessment audit log
func (s *Server) handleListAssessments(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assessment store is not configured"})
		return
	}

	limit := parsePositiveInt(c.Query("limit"), defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := parsePositiveInt(c.Query("offset"), 0)

	assessments, err := s.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assessments"})
		return
	}

	total, err := s.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count assessments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// handleGetAssessment retrieves a single assessment by ID
func (s *Server) handleGetAssessment(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assessment store is not configured"})
		return
	}

	id := c.Param("id")
	assessment, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
		return
	}
	if assessment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// parsePositiveInt parses a query parameter, falling back on bad input
func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
