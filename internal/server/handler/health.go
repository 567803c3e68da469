package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wordflow/internal/ocr"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// HandleHealth reports that the API is up.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Word Flow Text Analyzer API is running",
		"version": Version,
	})
}

// OCREngine names an OCR engine and the binary that provides it.
type OCREngine struct {
	Name   string
	Binary string
}

// OCRHealth reports which OCR engines are installed.
type OCRHealth struct {
	Engines []OCREngine
	// Check defaults to ocr.EnsureBinary.
	Check func(binary string) error
}

// Handle lists the available engines. Image analysis works when tesseract is present.
func (h OCRHealth) Handle(c *gin.Context) {
	check := h.Check
	if check == nil {
		check = ocr.EnsureBinary
	}

	available := []string{}
	data := gin.H{}
	for _, e := range h.Engines {
		ok := check(e.Binary) == nil
		data[e.Name+"_available"] = ok
		if ok {
			available = append(available, e.Name)
		}
	}
	data["available_engines"] = available
	data["basic_functionality"] = data["tesseract_available"] == true

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
