package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "API_KEY", "MODE", "OCR_LANGUAGE", "OCR_TIMEOUT", "TESSERACT_BINARY",
	"OCRMYPDF_BINARY", "MAX_UPLOAD_SIZE", "BATCH_MAX_WORKERS", "BATCH_MAX_IMAGES",
	"BATCH_DB_PATH", "SEGMENT_TIMEOUT", "MIN_WORD_LENGTH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mode != ModeDebug || !cfg.Debug() {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.OCR.Language != "eng" || cfg.OCR.Timeout != 2*time.Minute || cfg.OCR.MaxUploadSize != 10<<20 {
		t.Fatalf("unexpected ocr defaults: %+v", cfg.OCR)
	}
	if cfg.Batch.MaxWorkers != 4 || cfg.Batch.MaxImages != 100 || cfg.Batch.DBPath != "data/batch.db" {
		t.Fatalf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Analysis.MinWordLength != 1 || cfg.Analysis.SegmentTimeout != 0 {
		t.Fatalf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
port: "9000"
mode: prod
ocr:
  language: deu
  timeout: 30s
batch:
  max_workers: 8
analysis:
  min_word_length: 3
`
	if err := os.WriteFile(path, []byte(yamlData), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("BATCH_MAX_IMAGES", "12")
	t.Setenv("SEGMENT_TIMEOUT", "250ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("env should override yaml port, got %s", cfg.Port)
	}
	if cfg.Debug() {
		t.Fatal("prod mode should disable debug")
	}
	if cfg.OCR.Language != "deu" || cfg.OCR.Timeout != 30*time.Second {
		t.Fatalf("unexpected ocr config: %+v", cfg.OCR)
	}
	if cfg.Batch.MaxWorkers != 8 || cfg.Batch.MaxImages != 12 {
		t.Fatalf("unexpected batch config: %+v", cfg.Batch)
	}
	if cfg.Analysis.MinWordLength != 3 || cfg.Analysis.SegmentTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected analysis config: %+v", cfg.Analysis)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid duration")
	}

	clearEnv(t)
	t.Setenv("BATCH_MAX_WORKERS", "many")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid integer")
	}

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
