// Package extract turns uploaded documents into plain text for analysis.
//
// Each format has its own Processor. A processor never panics on bad input:
// it returns an unsuccessful ProcessingResult whose ErrorMessage is safe to
// show to the client. Fault is set only when a collaborator (such as the OCR
// engine) failed rather than the input itself.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned when a filename has an extension the processor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoFilename is returned when a processor needs a filename and none was given.
var ErrNoFilename = errors.New("no filename provided")

const msgNoContent = "No text content found in the file"

// FileInfo describes the source document.
type FileInfo struct {
	Filename       string        `json:"filename"`
	Extension      string        `json:"extension"`
	Size           int64         `json:"size"`
	Encoding       string        `json:"encoding,omitempty"`
	Title          string        `json:"title,omitempty"`
	Documents      int           `json:"documents,omitempty"`
	Pages          int           `json:"pages,omitempty"`
	Engine         string        `json:"engine,omitempty"`
	Language       string        `json:"language,omitempty"`
	Confidence     float64       `json:"confidence,omitempty"`
	ProcessingTime time.Duration `json:"processing_time,omitempty"`
}

// ProcessingResult is what a processor hands to the analysis pipeline.
type ProcessingResult struct {
	Success      bool
	ErrorMessage string
	Text         string
	Info         *FileInfo
	Fault        error
}

// Processor extracts text from one document format.
type Processor interface {
	ValidateExtension(filename string) error
	Process(ctx context.Context, content []byte, filename string) ProcessingResult
}

func succeeded(text string, info *FileInfo) ProcessingResult {
	return ProcessingResult{Success: true, Text: text, Info: info}
}

func failed(message string) ProcessingResult {
	return ProcessingResult{ErrorMessage: message}
}

func faulted(message string, err error) ProcessingResult {
	return ProcessingResult{ErrorMessage: message, Fault: err}
}

func hasContent(text string) bool {
	return strings.TrimSpace(text) != ""
}

func extensionOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func validateExtension(filename string, supported []string) error {
	if filename == "" {
		return ErrNoFilename
	}
	ext := extensionOf(filename)
	for _, s := range supported {
		if ext == s {
			return nil
		}
	}
	return fmt.Errorf("%w, supported formats: %s", ErrUnsupportedFormat, strings.Join(supported, ", "))
}

// processLog carries the per-processor start/success/failure log lines.
type processLog struct {
	logger *zap.Logger
}

func newProcessLog(logger *zap.Logger, format string) processLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return processLog{logger: logger.With(zap.String("format", format))}
}

func (l processLog) start(filename string, size int) {
	l.logger.Info("processing file", zap.String("filename", filename), zap.Int("bytes", size))
}

func (l processLog) success(filename string, textLength int) {
	l.logger.Info("processed file", zap.String("filename", filename), zap.Int("characters", textLength))
}

func (l processLog) failure(filename string, message string, err error) {
	l.logger.Error("failed to process file", zap.String("filename", filename), zap.String("reason", message), zap.Error(err))
}
