package analysis

import (
	"strings"
	"unicode/utf8"
)

// Kind selects how a title is derived.
type Kind string

const (
	KindText     Kind = "text"
	KindSubtitle Kind = "subtitle"
	KindEPUB     Kind = "epub"
	KindImage    Kind = "image"
	KindPDF      Kind = "pdf"
)

const (
	maxTitleLength     = 100
	truncatedTitleBody = 97
	minTitleSentence   = 10
)

// TitleContext carries the caller-supplied hints used to name a document.
type TitleContext struct {
	CustomTitle   string
	Filename      string
	MetadataTitle string
	Engine        string
}

// ExtractTitle derives a display title. raw is the text that was analyzed;
// when it is empty the title is always "Untitled".
func ExtractTitle(raw string, kind Kind, sentences []string, tc TitleContext) string {
	if raw == "" {
		return "Untitled"
	}

	switch kind {
	case KindEPUB:
		if tc.MetadataTitle != "" {
			return tc.MetadataTitle
		}
		if title, ok := firstLongSentence(sentences); ok {
			return title
		}
		return "Untitled Book"

	case KindText:
		if custom := strings.TrimSpace(tc.CustomTitle); custom != "" {
			return custom
		}
		if len(sentences) > 0 {
			return truncateTitle(strings.TrimSpace(sentences[0]))
		}
		return "Untitled"

	case KindSubtitle:
		// Filename titles are not truncated.
		if tc.Filename != "" {
			return stripExtension(tc.Filename)
		}
		if title, ok := firstLongSentence(sentences); ok {
			return title
		}
		return "Untitled Subtitle"

	case KindImage:
		engine := tc.Engine
		if engine == "" {
			engine = "ocr"
		}
		return "Image Text - " + strings.ToUpper(engine) + " OCR"

	case KindPDF:
		if tc.MetadataTitle != "" {
			return tc.MetadataTitle
		}
		if tc.Filename != "" {
			return stripExtension(tc.Filename)
		}
		return "Untitled Document"
	}

	return "Untitled"
}

func firstLongSentence(sentences []string) (string, bool) {
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > minTitleSentence {
			return truncateTitle(s), true
		}
	}
	return "", false
}

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxTitleLength {
		return title
	}
	return string([]rune(title)[:truncatedTitleBody]) + "..."
}

// stripExtension drops the final extension of the last path element.
// Leading dots (".bashrc") do not start an extension.
func stripExtension(name string) string {
	base := name[strings.LastIndex(name, "/")+1:]
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || strings.Trim(base[:dot], ".") == "" {
		return name
	}
	return name[:len(name)-len(base)+dot]
}
