package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const minTextLength = 10

// TextProcessor validates raw text submitted directly by the client.
type TextProcessor struct {
	log processLog
}

// NewTextProcessor builds a TextProcessor.
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{log: newProcessLog(logger, "text")}
}

// ValidateExtension accepts anything; raw text has no container.
func (p *TextProcessor) ValidateExtension(string) error { return nil }

// ProcessText checks the text is long enough and returns it with whitespace collapsed.
func (p *TextProcessor) ProcessText(text string) ProcessingResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return failed("No text provided")
	}
	if utf8.RuneCountInString(trimmed) < minTextLength {
		return failed("Text is too short (minimum 10 characters)")
	}

	cleaned := strings.Join(strings.Fields(text), " ")
	return succeeded(cleaned, &FileInfo{
		Extension: ".txt",
		Size:      int64(len(text)),
		Encoding:  "utf-8",
	})
}

// Process treats content as UTF-8 text.
func (p *TextProcessor) Process(_ context.Context, content []byte, filename string) ProcessingResult {
	p.log.start(filename, len(content))
	result := p.ProcessText(decodeText(content).text)
	if result.Success {
		result.Info.Filename = filename
		p.log.success(filename, len(result.Text))
	}
	return result
}
