package extract

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"wordflow/internal/ocr"
)

var pdfExtensions = []string{".pdf"}

// PageExtractor returns the OCR text of every page of a PDF on disk.
type PageExtractor interface {
	ExtractText(ctx context.Context, pdfPath string, opts ocr.Options) ([]ocr.PageContent, error)
}

// PDFProcessor reads PDFs through OCRmyPDF.
type PDFProcessor struct {
	log       processLog
	extractor PageExtractor
	language  string
}

// NewPDFProcessor builds a PDFProcessor.
func NewPDFProcessor(extractor PageExtractor, language string, logger *zap.Logger) *PDFProcessor {
	return &PDFProcessor{
		log:       newProcessLog(logger, "pdf"),
		extractor: extractor,
		language:  language,
	}
}

// ValidateExtension accepts .pdf only.
func (p *PDFProcessor) ValidateExtension(filename string) error {
	return validateExtension(filename, pdfExtensions)
}

// Process stages the PDF on disk, OCRs it and joins the pages.
func (p *PDFProcessor) Process(ctx context.Context, content []byte, filename string) ProcessingResult {
	p.log.start(filename, len(content))

	if err := p.ValidateExtension(filename); err != nil {
		return failed(err.Error())
	}
	if len(content) == 0 {
		return failed("Empty PDF file")
	}

	path, cleanup, err := ocr.SaveUploadedFile(bytes.NewReader(content), ".pdf")
	if err != nil {
		p.log.failure(filename, "failed to stage pdf", err)
		return faulted("Failed to store uploaded PDF", err)
	}
	defer cleanup()

	started := time.Now()
	pages, err := p.extractor.ExtractText(ctx, path, ocr.Options{Language: p.language})
	if err != nil {
		msg := "OCR processing failed: " + err.Error()
		p.log.failure(filename, msg, err)
		return faulted(msg, err)
	}

	text := ocr.JoinPages(pages)
	if !hasContent(text) {
		p.log.failure(filename, msgNoContent, nil)
		return failed(msgNoContent)
	}

	p.log.success(filename, len(text))
	return succeeded(text, &FileInfo{
		Filename:       filename,
		Extension:      ".pdf",
		Size:           int64(len(content)),
		Pages:          len(pages),
		Engine:         "ocrmypdf",
		Language:       p.language,
		ProcessingTime: time.Since(started),
	})
}
