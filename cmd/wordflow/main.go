// Command wordflow analyzes a local file and prints the report as JSON.
//
//	wordflow [-kind text|subtitle|epub|pdf|image] [-top n] [-min-length n] file
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wordflow/internal/analysis"
	"wordflow/internal/config"
	"wordflow/internal/server"
	"wordflow/internal/server/service"
	"wordflow/pkg"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: wordflow [flags] file")

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		configPath string
		kind       string
		title      string
		top        int
		minLength  int
		stats      bool
	)
	fs := flag.NewFlagSet("wordflow", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to YAML config file (optional)")
	fs.StringVar(&kind, "kind", "", "Document kind; inferred from the extension when empty")
	fs.StringVar(&title, "title", "", "Title for plain text input")
	fs.IntVar(&top, "top", 0, "Print only the n most frequent words")
	fs.IntVar(&minLength, "min-length", 0, "Minimum word length in characters")
	fs.BoolVar(&stats, "stats", false, "Print statistics instead of the full report")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(fs.Output(), errUsage)
		fs.PrintDefaults()
		return errUsage
	}
	path := fs.Arg(0)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if minLength > 0 {
		cfg.Analysis.MinWordLength = minLength
	}

	logger, err := server.NewLogger(false)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	docKind := analysis.Kind(kind)
	if docKind == "" {
		docKind = kindFor(path)
	}
	filename := filepath.Base(path)

	svc := server.NewService(cfg, logger)

	if stats || top > 0 {
		text, err := svc.ExtractText(ctx, docKind, content, filename)
		if err != nil {
			return err
		}
		if stats {
			out, err := svc.Statistics(text, minLength)
			if err != nil {
				return err
			}
			return pkg.Fprint(stdout, out)
		}
		out, err := svc.TopWords(text, top, minLength)
		if err != nil {
			return err
		}
		return pkg.Fprint(stdout, out)
	}

	var resp service.Response
	switch docKind {
	case analysis.KindText:
		resp, err = svc.AnalyzeText(string(content), title, minLength)
	case analysis.KindImage:
		resp, err = svc.AnalyzeImage(ctx, content, filename, cfg.OCR.Language)
	default:
		resp, err = svc.AnalyzeFile(ctx, docKind, content, filename)
	}
	if err != nil {
		return err
	}
	return pkg.Fprint(stdout, resp)
}

func kindFor(path string) analysis.Kind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".srt"), strings.HasSuffix(lower, ".vtt"):
		return analysis.KindSubtitle
	case strings.HasSuffix(lower, ".epub"):
		return analysis.KindEPUB
	case strings.HasSuffix(lower, ".pdf"):
		return analysis.KindPDF
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"} {
		if strings.HasSuffix(lower, ext) {
			return analysis.KindImage
		}
	}
	return analysis.KindText
}
