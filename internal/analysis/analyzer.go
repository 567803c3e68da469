// Package analysis turns extracted plain text into sentences, word
// frequencies and a display title.
//
// Every operation is a pure in-memory transformation. Empty input is a valid
// case that yields a zeroed Result; nothing in this package returns an error.
package analysis

import (
	"math"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Result is the outcome of analyzing one document.
type Result struct {
	Sentences        []string    `json:"sentences"`
	UniqueWords      []WordCount `json:"unique_words"`
	TotalWords       int         `json:"total_words"`
	TotalUniqueWords int         `json:"total_unique_words"`
	TotalSentences   int         `json:"total_sentences"`
}

// Stats is the lightweight summary returned by Analyzer.Statistics.
type Stats struct {
	TotalWords            int     `json:"total_words"`
	TotalUniqueWords      int     `json:"total_unique_words"`
	TotalSentences        int     `json:"total_sentences"`
	AverageWordLength     float64 `json:"average_word_length"`
	AverageSentenceLength float64 `json:"average_sentence_length"`
}

// Config wires an Analyzer. A nil Segmenter means regex-only segmentation.
type Config struct {
	Segmenter *Segmenter
	Logger    *zap.Logger
}

// Analyzer composes normalization, segmentation, word extraction and counting.
type Analyzer struct {
	segmenter *Segmenter
	logger    *zap.Logger
}

// New creates an Analyzer.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	segmenter := cfg.Segmenter
	if segmenter == nil {
		segmenter = NewSegmenter(nil, 0, logger)
	}
	return &Analyzer{
		segmenter: segmenter,
		logger:    logger,
	}
}

// Analyze runs the full pipeline over raw text.
func (a *Analyzer) Analyze(raw string, minWordLength int) Result {
	if raw == "" {
		return emptyResult()
	}

	text := Normalize(raw)
	// Sentences and words are both taken from the same normalized text.
	sentences := a.segmenter.Segment(text)
	words := ExtractWords(text, minWordLength)
	unique := Aggregate(words)

	result := Result{
		Sentences:        sentences,
		UniqueWords:      unique,
		TotalWords:       len(words),
		TotalUniqueWords: len(unique),
		TotalSentences:   len(sentences),
	}

	a.logger.Debug("text analysis complete",
		zap.Int("total_words", result.TotalWords),
		zap.Int("total_unique_words", result.TotalUniqueWords),
		zap.Int("total_sentences", result.TotalSentences),
	)
	return result
}

// Statistics computes counts and averages without building the word list.
func (a *Analyzer) Statistics(raw string, minWordLength int) Stats {
	if raw == "" {
		return Stats{}
	}

	text := Normalize(raw)
	sentences := a.segmenter.Segment(text)
	words := ExtractWords(text, minWordLength)

	unique := make(map[string]struct{}, len(words))
	letters := 0
	for _, w := range words {
		unique[w] = struct{}{}
		letters += utf8.RuneCountInString(w)
	}

	stats := Stats{
		TotalWords:       len(words),
		TotalUniqueWords: len(unique),
		TotalSentences:   len(sentences),
	}
	if stats.TotalWords > 0 {
		stats.AverageWordLength = round2(float64(letters) / float64(stats.TotalWords))
	}
	if stats.TotalSentences > 0 {
		stats.AverageSentenceLength = round2(float64(stats.TotalWords) / float64(stats.TotalSentences))
	}
	return stats
}

// MostCommon returns the n most frequent words of raw text.
func (a *Analyzer) MostCommon(raw string, n, minWordLength int) []WordCount {
	if raw == "" {
		return []WordCount{}
	}
	return TopN(ExtractWords(Normalize(raw), minWordLength), n)
}

// Frequent returns the words of raw text seen at least minFrequency times.
func (a *Analyzer) Frequent(raw string, minFrequency, minWordLength int) []WordCount {
	if raw == "" {
		return []WordCount{}
	}
	return AboveThreshold(ExtractWords(Normalize(raw), minWordLength), minFrequency)
}

func emptyResult() Result {
	return Result{
		Sentences:   []string{},
		UniqueWords: []WordCount{},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
