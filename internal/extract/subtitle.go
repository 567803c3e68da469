package extract

import (
	"context"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

var subtitleExtensions = []string{".srt", ".vtt", ".txt"}

var (
	srtIndexLine     = regexp.MustCompile(`^\d+$`)
	srtTimestampLine = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}$`)
	vttTimestampLine = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}`)
	vttSettingLine   = regexp.MustCompile(`^[A-Za-z]+:`)
)

// SubtitleProcessor reads SRT, WebVTT and plain text subtitle files.
type SubtitleProcessor struct {
	log    processLog
	policy *bluemonday.Policy
}

// NewSubtitleProcessor builds a SubtitleProcessor.
func NewSubtitleProcessor(logger *zap.Logger) *SubtitleProcessor {
	return &SubtitleProcessor{
		log:    newProcessLog(logger, "subtitle"),
		policy: bluemonday.StrictPolicy(),
	}
}

// ValidateExtension accepts .srt, .vtt and .txt.
func (p *SubtitleProcessor) ValidateExtension(filename string) error {
	return validateExtension(filename, subtitleExtensions)
}

// Process decodes the file and strips cue numbers, timestamps and markup.
func (p *SubtitleProcessor) Process(_ context.Context, content []byte, filename string) ProcessingResult {
	p.log.start(filename, len(content))

	if err := p.ValidateExtension(filename); err != nil {
		return failed(err.Error())
	}

	decoded := decodeText(content)
	ext := extensionOf(filename)

	var text string
	switch ext {
	case ".srt":
		text = p.fromSRT(decoded.text)
	case ".vtt":
		text = p.fromVTT(decoded.text)
	default:
		text = p.fromPlain(decoded.text)
	}

	if !hasContent(text) {
		p.log.failure(filename, msgNoContent, nil)
		return failed(msgNoContent)
	}

	p.log.success(filename, len(text))
	return succeeded(text, &FileInfo{
		Filename:  filename,
		Extension: ext,
		Size:      int64(len(content)),
		Encoding:  decoded.encoding,
	})
}

// fromSRT drops each cue number together with the timestamp line after it.
func (p *SubtitleProcessor) fromSRT(content string) string {
	var lines []string
	skipNext := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			skipNext = false
			continue
		}
		if skipNext {
			skipNext = false
			continue
		}
		if srtIndexLine.MatchString(line) {
			skipNext = true
			continue
		}
		if srtTimestampLine.MatchString(line) {
			continue
		}
		if cleaned := p.stripTags(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}

	return strings.Join(lines, " ")
}

// fromVTT drops the header, timestamps and cue settings that follow a timestamp.
func (p *SubtitleProcessor) fromVTT(content string) string {
	var lines []string
	afterTimestamp := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || line == "WEBVTT" {
			continue
		}
		if vttTimestampLine.MatchString(line) {
			afterTimestamp = true
			continue
		}
		if afterTimestamp && vttSettingLine.MatchString(line) {
			continue
		}
		afterTimestamp = false

		if cleaned := p.stripTags(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}

	return strings.Join(lines, " ")
}

func (p *SubtitleProcessor) fromPlain(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if cleaned := p.stripTags(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return strings.Join(lines, " ")
}

// stripTags removes markup such as <i> or <font>. bluemonday escapes the
// remaining text, so entities are decoded afterwards.
func (p *SubtitleProcessor) stripTags(line string) string {
	return strings.TrimSpace(html.UnescapeString(p.policy.Sanitize(line)))
}

type decodedText struct {
	text     string
	encoding string
}

// decodeText reads content as UTF-8, falling back to Latin-1 which accepts any byte sequence.
func decodeText(content []byte) decodedText {
	if utf8.Valid(content) {
		return decodedText{
			text:     strings.TrimPrefix(string(content), "\ufeff"),
			encoding: "utf-8",
		}
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return decodedText{text: string(content), encoding: "unknown"}
	}
	return decodedText{text: string(decoded), encoding: "latin-1"}
}
