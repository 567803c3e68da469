package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wordflow/internal/analysis"
	"wordflow/internal/extract"
)

// ErrCollaborator marks failures of an external dependency such as the OCR engine.
var ErrCollaborator = errors.New("collaborator failure")

// ValidationError is a client-side problem with the submitted input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// CollaboratorError carries a client-facing message for a failed dependency.
type CollaboratorError struct {
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string { return e.Message }

func (e *CollaboratorError) Unwrap() []error { return []error{ErrCollaborator, e.Err} }

// Response is the analysis envelope returned to clients.
type Response struct {
	analysis.Report
	OCR *OCRMetadata `json:"ocr_metadata,omitempty"`
}

// Processors groups the per-format extractors.
type Processors struct {
	Text     *extract.TextProcessor
	Subtitle extract.Processor
	EPUB     extract.Processor
	PDF      extract.Processor
	Image    ImageProcessor
}

// AnalysisService turns requests into analysis reports.
type AnalysisService struct {
	analyzer      *analysis.Analyzer
	processors    Processors
	minWordLength int
	logger        *zap.Logger
}

// NewAnalysisService builds the service. minWordLength is used when a
// request does not set its own.
func NewAnalysisService(analyzer *analysis.Analyzer, processors Processors, minWordLength int, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if processors.Text == nil {
		processors.Text = extract.NewTextProcessor(logger)
	}
	return &AnalysisService{
		analyzer:      analyzer,
		processors:    processors,
		minWordLength: minWordLength,
		logger:        logger,
	}
}

// AnalyzeText analyzes text submitted directly. An empty title is derived from the text.
func (s *AnalysisService) AnalyzeText(text, title string, minWordLength int) (Response, error) {
	res := s.processors.Text.ProcessText(text)
	if err := resultError(res); err != nil {
		return Response{}, err
	}
	return s.respond(res.Text, analysis.KindText, analysis.TitleContext{CustomTitle: title}, minWordLength), nil
}

// AnalyzeFile extracts text from an uploaded document of the given kind and analyzes it.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, kind analysis.Kind, content []byte, filename string) (Response, error) {
	proc, err := s.processorFor(kind)
	if err != nil {
		return Response{}, err
	}

	res := proc.Process(ctx, content, filename)
	if err := resultError(res); err != nil {
		return Response{}, err
	}

	tc := analysis.TitleContext{Filename: filename}
	if res.Info != nil {
		tc.MetadataTitle = res.Info.Title
	}
	return s.respond(res.Text, kind, tc, 0), nil
}

// ExtractText runs the processor for kind over content and returns the
// extracted text without analyzing it.
func (s *AnalysisService) ExtractText(ctx context.Context, kind analysis.Kind, content []byte, filename string) (string, error) {
	var res extract.ProcessingResult
	if kind == analysis.KindImage {
		if s.processors.Image == nil {
			return "", errImageNotConfigured()
		}
		res = s.processors.Image.ProcessWithLanguage(ctx, content, filename, "")
	} else {
		proc, err := s.processorFor(kind)
		if err != nil {
			return "", err
		}
		res = proc.Process(ctx, content, filename)
	}
	if err := resultError(res); err != nil {
		return "", err
	}
	return res.Text, nil
}

// Statistics returns counts and averages for text. A minWordLength of zero
// uses the configured default.
func (s *AnalysisService) Statistics(text string, minWordLength int) (analysis.Stats, error) {
	if err := requireText(text); err != nil {
		return analysis.Stats{}, err
	}
	return s.analyzer.Statistics(text, s.wordLength(minWordLength)), nil
}

// TopWords returns the n most frequent words.
func (s *AnalysisService) TopWords(text string, n, minWordLength int) ([]analysis.WordCount, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, &ValidationError{Message: "n must be a positive integer"}
	}
	return s.analyzer.MostCommon(text, n, s.wordLength(minWordLength)), nil
}

// FrequentWords returns words seen at least minFrequency times.
func (s *AnalysisService) FrequentWords(text string, minFrequency, minWordLength int) ([]analysis.WordCount, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	if minFrequency <= 0 {
		return nil, &ValidationError{Message: "min_frequency must be a positive integer"}
	}
	return s.analyzer.Frequent(text, minFrequency, s.wordLength(minWordLength)), nil
}

func (s *AnalysisService) wordLength(n int) int {
	if n <= 0 {
		return s.minWordLength
	}
	return n
}

func (s *AnalysisService) processorFor(kind analysis.Kind) (extract.Processor, error) {
	var proc extract.Processor
	switch kind {
	case analysis.KindSubtitle:
		proc = s.processors.Subtitle
	case analysis.KindEPUB:
		proc = s.processors.EPUB
	case analysis.KindPDF:
		proc = s.processors.PDF
	case analysis.KindText:
		proc = s.processors.Text
	}
	if proc == nil {
		return nil, fmt.Errorf("no processor configured for %q documents", kind)
	}
	return proc, nil
}

func (s *AnalysisService) respond(text string, kind analysis.Kind, tc analysis.TitleContext, minWordLength int) Response {
	result := s.analyzer.Analyze(text, s.wordLength(minWordLength))
	title := analysis.ExtractTitle(text, kind, result.Sentences, tc)

	s.logger.Info("text analysis complete",
		zap.String("kind", string(kind)),
		zap.Int("total_words", result.TotalWords),
		zap.Int("total_unique_words", result.TotalUniqueWords),
		zap.Int("total_sentences", result.TotalSentences),
	)
	return Response{Report: analysis.NewReport(title, result)}
}

func resultError(res extract.ProcessingResult) error {
	switch {
	case res.Success:
		return nil
	case res.Fault != nil:
		return &CollaboratorError{Message: res.ErrorMessage, Err: res.Fault}
	default:
		return &ValidationError{Message: res.ErrorMessage}
	}
}

func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Message: "No text provided"}
	}
	return nil
}
