package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"wordflow/internal/analysis"
	"wordflow/internal/server/service"
)

const handlerExpectedText = "content in page 1"

func TestHandleImage_Success(t *testing.T) {
	resp := sampleResponse()
	resp.OCR = &service.OCRMetadata{Engine: "tesseract", Language: "deu", ProcessingTime: 0.5}
	svc := &fakeService{resp: resp}
	h := newTestHandler(svc, false)

	req := newMultipartRequest(t, "/image", "image", "scan.png", []byte(handlerExpectedText), map[string]string{"lang": "deu"})
	w := serve(t, http.MethodPost, "/image", h.HandleImage, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if svc.gotLang != "deu" || svc.gotFilename != "scan.png" || string(svc.gotContent) != handlerExpectedText {
		t.Fatalf("unexpected service call: lang=%s file=%s", svc.gotLang, svc.gotFilename)
	}
	meta, ok := decodeBody(t, w)["ocr_metadata"].(map[string]any)
	if !ok || meta["engine"] != "tesseract" {
		t.Fatalf("expected ocr_metadata in body: %s", w.Body.String())
	}
}

func TestHandleImage_MissingFile(t *testing.T) {
	h := newTestHandler(&fakeService{}, false)

	req := newMultipartRequest(t, "/image", "file", "scan.png", []byte("x"), nil)
	w := serve(t, http.MethodPost, "/image", h.HandleImage, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "No image file provided" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

func TestHandlePDF_Success(t *testing.T) {
	svc := &fakeService{resp: sampleResponse()}
	h := newTestHandler(svc, false)

	req := newMultipartRequest(t, "/pdf", "file", "report.pdf", []byte("%PDF-1.7"), nil)
	w := serve(t, http.MethodPost, "/pdf", h.HandlePDF, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if svc.gotKind != analysis.KindPDF {
		t.Fatalf("expected pdf kind, got %s", svc.gotKind)
	}
}

func TestHandlePDF_MethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestHandler(&fakeService{}, false)

	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)

	// Register only POST, try GET
	r.POST("/pdf", h.HandlePDF)

	req := httptest.NewRequest(http.MethodGet, "/pdf", nil)
	c.Request = req
	r.ServeHTTP(w, req)

	// Gin returns 404 for method not allowed on unregistered routes
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestHandlePDF_OCRError(t *testing.T) {
	svc := &fakeService{err: &service.CollaboratorError{Message: "OCR processing failed: boom", Err: errors.New("boom")}}
	h := newTestHandler(svc, false)

	req := newMultipartRequest(t, "/pdf", "file", "report.pdf", []byte("%PDF"), nil)
	w := serve(t, http.MethodPost, "/pdf", h.HandlePDF, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", w.Code)
	}
}
