package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/model"
)

const (
	bannerMessage = "AI Fact-Checker API is running!"
	noTextMessage = "No text provided"
)

// FactCheckRequest is the body of POST /fact-check
type FactCheckRequest struct {
	Text *string `json:"text" binding:"required"`
}

// RootResponse is the body of GET /
type RootResponse struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// ErrorResponse is the body of every 4xx/5xx answer
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{
		Message:   bannerMessage,
		Endpoints: []string{"/fact-check", "/health"},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: model.UnixSeconds(s.now()),
	})
}

func (s *Server) handleFactCheck(c *gin.Context) {
	var req FactCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("rejecting fact-check request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: noTextMessage})
		return
	}
	// Blank text is refused as well as missing or non-string text
	if strings.TrimSpace(*req.Text) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: noTextMessage})
		return
	}

	resp, err := s.checker.Run(c.Request.Context(), *req.Text)
	if err != nil {
		s.logger.Error("fact-check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
