package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wordflow/internal/analysis"
)

// HandlePDF runs OCR over an uploaded PDF and analyzes the text.
func (h *AnalysisHandler) HandlePDF(c *gin.Context) {
	h.handleDocument(c, analysis.KindPDF)
}

// HandleImage runs OCR over one uploaded image and analyzes the text.
// The optional lang form field selects the Tesseract language.
func (h *AnalysisHandler) HandleImage(c *gin.Context) {
	content, filename, ok := h.upload(c, "image", "No image file provided")
	if !ok {
		return
	}
	lang := c.Request.FormValue("lang")

	resp, err := h.service.AnalyzeImage(c.Request.Context(), content, filename, lang)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
