package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wordflow/internal/analysis"
	"wordflow/internal/server/service"
)

// AnalysisService defines the behavior consumed by the analysis handlers.
type AnalysisService interface {
	AnalyzeText(text, title string, minWordLength int) (service.Response, error)
	AnalyzeFile(ctx context.Context, kind analysis.Kind, content []byte, filename string) (service.Response, error)
	AnalyzeImage(ctx context.Context, content []byte, filename, language string) (service.Response, error)
	Statistics(text string, minWordLength int) (analysis.Stats, error)
	TopWords(text string, n, minWordLength int) ([]analysis.WordCount, error)
	FrequentWords(text string, minFrequency, minWordLength int) ([]analysis.WordCount, error)
}

type textRequest struct {
	Text          string `json:"text"`
	Title         string `json:"title"`
	MinWordLength int    `json:"min_word_length"`
}

type topWordsRequest struct {
	Text          string `json:"text"`
	N             int    `json:"n"`
	MinWordLength int    `json:"min_word_length"`
}

type frequentWordsRequest struct {
	Text          string `json:"text"`
	MinFrequency  int    `json:"min_frequency"`
	MinWordLength int    `json:"min_word_length"`
}

// AnalysisHandler serves text and document analysis.
type AnalysisHandler struct {
	service       AnalysisService
	maxUploadSize int64
	errors        Errors
}

// NewAnalysisHandler builds the handler.
func NewAnalysisHandler(svc AnalysisService, maxUploadSize int64, errs Errors) *AnalysisHandler {
	return &AnalysisHandler{service: svc, maxUploadSize: maxUploadSize, errors: errs}
}

// HandleText analyzes a JSON text submission.
func (h *AnalysisHandler) HandleText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !validWordLength(c, req.MinWordLength) {
		return
	}

	resp, err := h.service.AnalyzeText(req.Text, req.Title, req.MinWordLength)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSubtitle analyzes an uploaded .srt, .vtt or .txt file.
func (h *AnalysisHandler) HandleSubtitle(c *gin.Context) {
	h.handleDocument(c, analysis.KindSubtitle)
}

// HandleEPUB analyzes an uploaded EPUB book.
func (h *AnalysisHandler) HandleEPUB(c *gin.Context) {
	h.handleDocument(c, analysis.KindEPUB)
}

func (h *AnalysisHandler) handleDocument(c *gin.Context, kind analysis.Kind) {
	content, filename, ok := h.upload(c, "file", "No file provided")
	if !ok {
		return
	}

	resp, err := h.service.AnalyzeFile(c.Request.Context(), kind, content, filename)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleStatistics returns counts and averages for a JSON text submission.
func (h *AnalysisHandler) HandleStatistics(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if !validWordLength(c, req.MinWordLength) {
		return
	}

	stats, err := h.service.Statistics(req.Text, req.MinWordLength)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleTopWords returns the n most frequent words.
func (h *AnalysisHandler) HandleTopWords(c *gin.Context) {
	req := topWordsRequest{N: 10}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if !validWordLength(c, req.MinWordLength) {
		return
	}

	words, err := h.service.TopWords(req.Text, req.N, req.MinWordLength)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

// HandleFrequentWords returns words seen at least min_frequency times.
func (h *AnalysisHandler) HandleFrequentWords(c *gin.Context) {
	req := frequentWordsRequest{MinFrequency: 2}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if !validWordLength(c, req.MinWordLength) {
		return
	}

	words, err := h.service.FrequentWords(req.Text, req.MinFrequency, req.MinWordLength)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

// upload reads a multipart file, writing a 400 and returning false on failure.
func (h *AnalysisHandler) upload(c *gin.Context, field, missingMessage string) ([]byte, string, bool) {
	content, filename, err := readUpload(c, field, h.maxUploadSize)
	switch {
	case errors.Is(err, errMissingFile):
		abort(c, http.StatusBadRequest, missingMessage)
		return nil, "", false
	case err != nil:
		abort(c, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	return content, filename, true
}

func validWordLength(c *gin.Context, n int) bool {
	if n < 0 {
		abort(c, http.StatusBadRequest, "min_word_length must not be negative")
		return false
	}
	return true
}
