package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikey/upi-risk-engine/internal/core"
	"go.uber.org/zap"
)

type identifierRequest struct {
	Identifier string `json:"identifier"`
}

type textRequest struct {
	Text string `json:"text"`
}

type qrRequest struct {
	QRText string `json:"qrText"`
}

type qrBatchRequest struct {
	QRTexts []string `json:"qrTexts"`
}

type scoreRequest struct {
	Transaction core.Transaction   `json:"transaction"`
	History     []core.Transaction `json:"history"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"oracle": s.service.OracleAvailable(),
	})
}

func (s *Server) checkIdentifier(c *gin.Context) {
	var req identifierRequest
	if !bind(c, &req) {
		return
	}
	v, err := s.service.ClassifyIdentifier(c.Request.Context(), req.Identifier)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) analyzeText(c *gin.Context) {
	var req textRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.service.AnalyzeText(req.Text))
}

func (s *Server) analyzeMessage(c *gin.Context) {
	var req textRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.service.AnalyzeMessage(c.Request.Context(), req.Text))
}

func (s *Server) analyzeQR(c *gin.Context) {
	var req qrRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.service.AnalyzeQR(c.Request.Context(), req.QRText))
}

func (s *Server) analyzeQRBatch(c *gin.Context) {
	var req qrBatchRequest
	if !bind(c, &req) {
		return
	}
	if len(req.QRTexts) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "qrTexts must not be empty"})
		return
	}
	if len(req.QRTexts) > s.maxBatch {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("at most %d payloads per batch", s.maxBatch)})
		return
	}

	results, err := s.service.AnalyzeQRBatch(c.Request.Context(), req.QRTexts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) qrFeedback(c *gin.Context) {
	var req core.QRFeedback
	if !bind(c, &req) {
		return
	}
	report, err := s.service.RecordQRFeedback(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "report": report})
}

func (s *Server) scoreTransaction(c *gin.Context) {
	var req scoreRequest
	if !bind(c, &req) {
		return
	}
	res, err := s.service.ScoreTransaction(c.Request.Context(), req.Transaction, req.History)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) submitReport(c *gin.Context) {
	var req core.ScamReport
	if !bind(c, &req) {
		return
	}
	report, err := s.service.SubmitReport(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) getReports(c *gin.Context) {
	reports, category, err := s.service.GetReports(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"identifier":         c.Param("identifier"),
		"reports":            reports,
		"mostCommonCategory": category,
	})
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidFormat),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidReport):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
