package ocr

import (
	"strconv"
	"strings"
)

// Column layout of Tesseract's tsv output.
const (
	tsvLevel = iota
	tsvPage
	tsvBlock
	tsvPar
	tsvLine
	tsvWord
	tsvLeft
	tsvTop
	tsvWidth
	tsvHeight
	tsvConf
	tsvText
	tsvColumns
)

const tsvWordLevel = "5"

type tsvLineKey struct {
	page, block, par, line string
}

// parseTSV rebuilds the recognized text from Tesseract tsv output and
// returns it with the mean word confidence scaled to [0, 1]. Words on one
// line are joined by spaces, lines by newlines and paragraphs by a blank line.
func parseTSV(data string) (string, float64) {
	var (
		b       strings.Builder
		prev    tsvLineKey
		started bool
		confSum float64
		confN   int
	)

	for _, row := range strings.Split(normalizeNewlines(data), "\n") {
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns || cols[tsvLevel] != tsvWordLevel {
			continue
		}
		word := strings.TrimSpace(cols[tsvText])
		if word == "" {
			continue
		}

		key := tsvLineKey{cols[tsvPage], cols[tsvBlock], cols[tsvPar], cols[tsvLine]}
		if started {
			switch {
			case key.page != prev.page || key.block != prev.block || key.par != prev.par:
				b.WriteString("\n\n")
			case key.line != prev.line:
				b.WriteByte('\n')
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteString(word)
		prev, started = key, true

		// -1 marks rows Tesseract did not score.
		if conf, err := strconv.ParseFloat(cols[tsvConf], 64); err == nil && conf >= 0 {
			confSum += conf
			confN++
		}
	}

	if confN == 0 {
		return b.String(), 0
	}
	return b.String(), confSum / float64(confN) / 100
}
