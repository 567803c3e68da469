package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultPDFBinary   = "ocrmypdf"
	defaultImageBinary = "tesseract"
	defaultTimeout     = 2 * time.Minute
	defaultLanguage    = "eng"
)

// PageContent represents OCR text for a single page.
type PageContent struct {
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// Recognition is the text read from one image.
type Recognition struct {
	Text           string
	Confidence     float64
	Engine         string
	Language       string
	ProcessingTime time.Duration
}

// Options controls the OCR command invocation.
type Options struct {
	Language string
}

// Processor wraps the OCRmyPDF and Tesseract CLIs.
type Processor struct {
	PDFBinary   string
	ImageBinary string
	Timeout     time.Duration
}

// NewProcessor returns a Processor with sane defaults.
func NewProcessor() *Processor {
	return &Processor{
		PDFBinary:   defaultPDFBinary,
		ImageBinary: defaultImageBinary,
		Timeout:     defaultTimeout,
	}
}

func (p *Processor) timeout() time.Duration {
	if p.Timeout <= 0 {
		return defaultTimeout
	}
	return p.Timeout
}

// ExtractText runs OCRmyPDF against pdfPath and returns cleaned page contents.
func (p *Processor) ExtractText(ctx context.Context, pdfPath string, opts Options) ([]PageContent, error) {
	if pdfPath == "" {
		return nil, errors.New("pdf path is required")
	}
	binary := p.PDFBinary
	if binary == "" {
		binary = defaultPDFBinary
	}

	sidecarFile, err := os.CreateTemp("", "ocr-sidecar-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create sidecar: %w", err)
	}
	defer os.Remove(sidecarFile.Name())
	defer sidecarFile.Close()

	outputPDF, err := os.CreateTemp("", "ocr-output-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(outputPDF.Name())
	defer outputPDF.Close()

	args := []string{
		"--sidecar", sidecarFile.Name(),
		"--quiet",
		"--skip-text",
		"--rotate-pages-threshold", "0.0",
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	args = append(args, pdfPath, outputPDF.Name())

	cmdCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ocrmypdf: %w - %s", err, stderr.String())
	}

	return parseSidecar(sidecarFile.Name())
}

// RecognizeImage runs Tesseract against imagePath and returns the recognized
// text with its mean word confidence.
func (p *Processor) RecognizeImage(ctx context.Context, imagePath string, opts Options) (Recognition, error) {
	if imagePath == "" {
		return Recognition{}, errors.New("image path is required")
	}
	binary := p.ImageBinary
	if binary == "" {
		binary = defaultImageBinary
	}
	lang := opts.Language
	if lang == "" {
		lang = defaultLanguage
	}

	cmdCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	started := time.Now()
	cmd := exec.CommandContext(cmdCtx, binary, imagePath, "stdout", "-l", lang, "tsv")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Recognition{}, fmt.Errorf("tesseract: %w - %s", err, stderr.String())
	}

	text, confidence := parseTSV(stdout.String())
	return Recognition{
		Text:           strings.TrimSpace(text),
		Confidence:     confidence,
		Engine:         "tesseract",
		Language:       lang,
		ProcessingTime: time.Since(started),
	}, nil
}

func parseSidecar(path string) ([]PageContent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sidecar: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	return parseSidecarBytes(data), nil
}

// parseSidecarBytes splits the sidecar on form feeds, one chunk per page.
func parseSidecarBytes(data []byte) []PageContent {
	raw := strings.Split(string(data), "\f")
	var pages []PageContent
	pageNum := 1
	for _, chunk := range raw {
		text := strings.TrimSpace(normalizeNewlines(chunk))
		if text != "" && !isSkippedPageMarker(text) {
			pages = append(pages, PageContent{
				Page:    pageNum,
				Content: text,
			})
		}
		pageNum++
	}
	return pages
}

// OCRmyPDF writes this marker for pages that already had a text layer.
func isSkippedPageMarker(text string) bool {
	return strings.HasPrefix(text, "[OCR skipped on page")
}

func normalizeNewlines(in string) string {
	return strings.ReplaceAll(in, "\r\n", "\n")
}

// JoinPages concatenates page contents separated by blank lines.
func JoinPages(pages []PageContent) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, "\n\n")
}

// SaveUploadedFile copies the provided reader to a temporary file ending in suffix.
func SaveUploadedFile(r io.Reader, suffix string) (string, func(), error) {
	tmpFile, err := os.CreateTemp("", "ocr-input-*"+suffix)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}

	if _, err := io.Copy(tmpFile, r); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("sync temp file: %w", err)
	}

	return tmpFile.Name(), cleanup, nil
}

// EnsureBinary checks whether an OCR binary is available on PATH.
func EnsureBinary(binary string) error {
	if binary == "" {
		return errors.New("ocr binary name is required")
	}
	_, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("ocr binary not found (%s): %w", binary, err)
	}
	return nil
}

// ResolveBinary returns the absolute binary path if available on PATH.
func ResolveBinary(binary string) (string, error) {
	if err := EnsureBinary(binary); err != nil {
		return "", err
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs, nil
	}
	return path, nil
}
