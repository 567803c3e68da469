package analysis

import (
	"reflect"
	"sort"
	"testing"
)

func TestExtractWords_PlainSentence(t *testing.T) {
	got := ExtractWords("This is a test. It has many words.", 1)
	want := []string{"this", "is", "a", "test", "it", "has", "many", "words"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractWords() = %q, want %q", got, want)
	}
}

// Overlapping layers count the same span more than once. This is kept on
// purpose so counts stay compatible with earlier releases.
func TestExtractWords_HyphenChainIsDoubleCounted(t *testing.T) {
	got := ExtractWords("state-of-the-art", 1)
	want := []string{"state", "of", "the", "art", "state-of-the-art"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractWords() = %q, want %q", got, want)
	}
}

func TestExtractWords_Layers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "contraction",
			input: "It's fine",
			want:  []string{"it", "s", "fine", "it's"},
		},
		{
			name:  "letters then digits",
			input: "COVID19 spread",
			want:  []string{"spread", "covid19"},
		},
		{
			name:  "letters digits with hyphen tail",
			input: "mp3-player",
			want:  []string{"player", "mp3-player"},
		},
		{
			name:  "digits then letters",
			input: "the 3rd time",
			want:  []string{"the", "time", "3rd"},
		},
		{
			name:  "accented letters stay whole",
			input: "Café déjà vu",
			want:  []string{"café", "déjà", "vu"},
		},
		{
			name:  "pure numbers are not words",
			input: "42 1999",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWords(tt.input, 1)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractWords(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractWords_MinLength(t *testing.T) {
	text := "a an the tree"

	if got := ExtractWords(text, 1); len(got) != 4 {
		t.Fatalf("min length 1 should not filter, got %q", got)
	}
	if got := ExtractWords(text, 0); len(got) != 4 {
		t.Fatalf("min length 0 should not filter, got %q", got)
	}

	got := ExtractWords(text, 3)
	sort.Strings(got)
	want := []string{"the", "tree"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractWords(min=3) = %q, want %q", got, want)
	}
}

func TestExtractWords_MinLengthCountsRunes(t *testing.T) {
	got := ExtractWords("été", 3)
	if !reflect.DeepEqual(got, []string{"été"}) {
		t.Fatalf("expected accented word to pass rune-length filter, got %q", got)
	}
}

func TestExtractWords_Empty(t *testing.T) {
	got := ExtractWords("", 1)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
