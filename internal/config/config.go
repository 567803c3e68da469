package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeProd  = "prod"
	ModeDebug = "debug"
)

// OCRConfig configures the external OCR binaries.
type OCRConfig struct {
	Language        string        `yaml:"language"`
	Timeout         time.Duration `yaml:"timeout"`
	TesseractBinary string        `yaml:"tesseract_binary"`
	OCRmyPDFBinary  string        `yaml:"ocrmypdf_binary"`
	MaxUploadSize   int64         `yaml:"max_upload_size"`
}

// BatchConfig configures background image sessions.
type BatchConfig struct {
	MaxWorkers int    `yaml:"max_workers"`
	MaxImages  int    `yaml:"max_images"`
	DBPath     string `yaml:"db_path"`
}

// AnalysisConfig configures the text pipeline.
type AnalysisConfig struct {
	SegmentTimeout time.Duration `yaml:"segment_timeout"`
	MinWordLength  int           `yaml:"min_word_length"`
}

// Config is the root application configuration.
type Config struct {
	Port     string         `yaml:"port"`
	APIKey   string         `yaml:"api_key"`
	Mode     string         `yaml:"mode"`
	OCR      OCRConfig      `yaml:"ocr"`
	Batch    BatchConfig    `yaml:"batch"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// Debug reports whether detailed errors and development logging are enabled.
func (c *Config) Debug() bool {
	return c.Mode != ModeProd
}

// Load reads .env into the environment, then the optional YAML file at path,
// then applies environment overrides and defaults. An empty path or a
// missing file skips the YAML step.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.APIKey, "API_KEY")
	setString(&cfg.Mode, "MODE")
	setString(&cfg.OCR.Language, "OCR_LANGUAGE")
	setString(&cfg.OCR.TesseractBinary, "TESSERACT_BINARY")
	setString(&cfg.OCR.OCRmyPDFBinary, "OCRMYPDF_BINARY")
	setString(&cfg.Batch.DBPath, "BATCH_DB_PATH")

	var errs []error
	errs = append(errs,
		setDuration(&cfg.OCR.Timeout, "OCR_TIMEOUT"),
		setDuration(&cfg.Analysis.SegmentTimeout, "SEGMENT_TIMEOUT"),
		setInt64(&cfg.OCR.MaxUploadSize, "MAX_UPLOAD_SIZE"),
		setInt(&cfg.Batch.MaxWorkers, "BATCH_MAX_WORKERS"),
		setInt(&cfg.Batch.MaxImages, "BATCH_MAX_IMAGES"),
		setInt(&cfg.Analysis.MinWordLength, "MIN_WORD_LENGTH"),
	)
	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeDebug
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "eng"
	}
	if cfg.OCR.Timeout <= 0 {
		cfg.OCR.Timeout = 2 * time.Minute
	}
	if cfg.OCR.TesseractBinary == "" {
		cfg.OCR.TesseractBinary = "tesseract"
	}
	if cfg.OCR.OCRmyPDFBinary == "" {
		cfg.OCR.OCRmyPDFBinary = "ocrmypdf"
	}
	if cfg.OCR.MaxUploadSize <= 0 {
		cfg.OCR.MaxUploadSize = 10 << 20
	}
	if cfg.Batch.MaxWorkers <= 0 {
		cfg.Batch.MaxWorkers = 4
	}
	if cfg.Batch.MaxImages <= 0 {
		cfg.Batch.MaxImages = 100
	}
	if cfg.Batch.DBPath == "" {
		cfg.Batch.DBPath = "data/batch.db"
	}
	if cfg.Analysis.MinWordLength <= 0 {
		cfg.Analysis.MinWordLength = 1
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
