package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
)

// WordCount is a word paired with its number of occurrences.
// It serializes as a two-element JSON array: ["word", 3].
type WordCount struct {
	Word  string
	Count int
}

// MarshalJSON encodes the pair as ["word", count].
func (w WordCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{w.Word, w.Count})
}

// UnmarshalJSON decodes a ["word", count] pair.
func (w *WordCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("word count: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &w.Word); err != nil {
		return fmt.Errorf("word count word: %w", err)
	}
	if err := json.Unmarshal(pair[1], &w.Count); err != nil {
		return fmt.Errorf("word count count: %w", err)
	}
	return nil
}

// tally counts tokens and remembers the order in which each was first seen.
func tally(tokens []string) []WordCount {
	index := make(map[string]int, len(tokens))
	counts := make([]WordCount, 0, len(tokens))
	for _, t := range tokens {
		if i, ok := index[t]; ok {
			counts[i].Count++
			continue
		}
		index[t] = len(counts)
		counts = append(counts, WordCount{Word: t, Count: 1})
	}
	return counts
}

// Aggregate counts tokens and sorts the result ascending by word.
func Aggregate(tokens []string) []WordCount {
	counts := tally(tokens)
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Word < counts[j].Word
	})
	return counts
}

// TopN returns the n most frequent tokens. Equal counts keep the order in
// which the words first appeared.
func TopN(tokens []string, n int) []WordCount {
	if n <= 0 {
		return []WordCount{}
	}
	counts := tally(tokens)
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// AboveThreshold returns tokens seen at least minFrequency times, sorted by
// count descending and then by word ascending.
func AboveThreshold(tokens []string, minFrequency int) []WordCount {
	counts := tally(tokens)
	kept := counts[:0]
	for _, c := range counts {
		if c.Count >= minFrequency {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Count != kept[j].Count {
			return kept[i].Count > kept[j].Count
		}
		return kept[i].Word < kept[j].Word
	})
	return kept
}
