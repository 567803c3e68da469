package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// Splitter detects sentence boundaries.
type Splitter interface {
	Split(text string) []string
}

// Punkt splits sentences with the pretrained English Punkt model.
type Punkt struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunkt loads the English training data. Call it once at startup.
func NewPunkt() (*Punkt, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt english model: %w", err)
	}
	return &Punkt{tokenizer: tokenizer}, nil
}

// Split returns the raw sentence spans found by the model.
func (p *Punkt) Split(text string) []string {
	found := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(found))
	for _, s := range found {
		out = append(out, s.Text)
	}
	return out
}

var sentenceDelimiters = regexp.MustCompile(`[.!?]+`)

var errSplitTimeout = errors.New("sentence splitter timed out")

// Segmenter turns normalized text into trimmed, non-empty sentences.
// It uses the primary Splitter when one is configured and falls back to
// splitting on runs of '.', '!' and '?' whenever the primary is missing,
// panics or exceeds the timeout.
type Segmenter struct {
	primary Splitter
	timeout time.Duration
	logger  *zap.Logger
}

// NewSegmenter builds a Segmenter. primary may be nil; timeout <= 0 disables the deadline.
func NewSegmenter(primary Splitter, timeout time.Duration, logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{
		primary: primary,
		timeout: timeout,
		logger:  logger,
	}
}

// HasPrimary reports whether model-based segmentation is configured.
func (s *Segmenter) HasPrimary() bool {
	return s != nil && s.primary != nil
}

// Segment never fails. Empty input yields an empty slice.
func (s *Segmenter) Segment(text string) []string {
	if text == "" {
		return []string{}
	}

	var raw []string
	if s.HasPrimary() {
		found, err := s.splitPrimary(text)
		if err != nil {
			s.logger.Warn("primary sentence segmentation failed, using fallback", zap.Error(err))
			raw = splitFallback(text)
		} else {
			raw = found
		}
	} else {
		raw = splitFallback(text)
	}

	return cleanSentences(raw)
}

func (s *Segmenter) splitPrimary(text string) ([]string, error) {
	if s.timeout <= 0 {
		return safeSplit(s.primary, text)
	}

	type outcome struct {
		sentences []string
		err       error
	}
	done := make(chan outcome, 1)
	go func() {
		found, err := safeSplit(s.primary, text)
		done <- outcome{sentences: found, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.sentences, o.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", errSplitTimeout, s.timeout)
	}
}

func safeSplit(splitter Splitter, text string) (found []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sentence splitter panicked: %v", r)
		}
	}()
	return splitter.Split(text), nil
}

func splitFallback(text string) []string {
	return sentenceDelimiters.Split(text, -1)
}

func cleanSentences(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
