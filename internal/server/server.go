package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wordflow/internal/analysis"
	"wordflow/internal/batch"
	"wordflow/internal/config"
	"wordflow/internal/extract"
	"wordflow/internal/ocr"
	"wordflow/internal/server/handler"
	"wordflow/internal/server/router"
	"wordflow/internal/server/service"
)

const shutdownTimeout = 15 * time.Second

// App holds the wired engine and the resources it owns.
type App struct {
	Engine *gin.Engine
	runner *batch.Runner
	store  *batch.Store
}

// NewLogger returns a development logger in debug mode and a production one otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewAnalyzer builds the text pipeline, preferring Punkt for sentence boundaries.
func NewAnalyzer(segmentTimeout time.Duration, logger *zap.Logger) *analysis.Analyzer {
	var primary analysis.Splitter
	if punkt, err := analysis.NewPunkt(); err != nil {
		logger.Warn("punkt tokenizer unavailable, using regex sentence splitting", zap.Error(err))
	} else {
		primary = punkt
	}
	return analysis.New(analysis.Config{
		Segmenter: analysis.NewSegmenter(primary, segmentTimeout, logger),
		Logger:    logger,
	})
}

type components struct {
	analyzer *analysis.Analyzer
	images   *extract.ImageProcessor
	service  *service.AnalysisService
}

func build(cfg *config.Config, logger *zap.Logger) components {
	processor := &ocr.Processor{
		PDFBinary:   cfg.OCR.OCRmyPDFBinary,
		ImageBinary: cfg.OCR.TesseractBinary,
		Timeout:     cfg.OCR.Timeout,
	}
	analyzer := NewAnalyzer(cfg.Analysis.SegmentTimeout, logger)
	images := extract.NewImageProcessor(processor, cfg.OCR.Language, cfg.OCR.MaxUploadSize, logger)

	svc := service.NewAnalysisService(analyzer, service.Processors{
		Text:     extract.NewTextProcessor(logger),
		Subtitle: extract.NewSubtitleProcessor(logger),
		EPUB:     extract.NewEPUBProcessor(logger),
		PDF:      extract.NewPDFProcessor(processor, cfg.OCR.Language, logger),
		Image:    images,
	}, cfg.Analysis.MinWordLength, logger)

	return components{analyzer: analyzer, images: images, service: svc}
}

// NewService builds the analysis service without the HTTP layer.
func NewService(cfg *config.Config, logger *zap.Logger) *service.AnalysisService {
	return build(cfg, logger).service
}

// New builds the dependency chain for cfg.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, bin := range []string{cfg.OCR.OCRmyPDFBinary, cfg.OCR.TesseractBinary} {
		if err := ocr.EnsureBinary(bin); err != nil {
			logger.Warn("ocr binary missing, related endpoints will fail", zap.String("binary", bin), zap.Error(err))
		}
	}

	c := build(cfg, logger)

	store, err := batch.Open(cfg.Batch.DBPath)
	if err != nil {
		return nil, err
	}
	runner := batch.NewRunner(batch.RunnerConfig{
		Store:         store,
		Images:        c.images,
		Analyzer:      c.analyzer,
		Engine:        "tesseract",
		Workers:       cfg.Batch.MaxWorkers,
		MaxImages:     cfg.Batch.MaxImages,
		MinWordLength: cfg.Analysis.MinWordLength,
		Logger:        logger,
	})

	errs := handler.Errors{Debug: cfg.Debug(), Logger: logger}
	analysisHandler := handler.NewAnalysisHandler(c.service, cfg.OCR.MaxUploadSize, errs)
	batchHandler := handler.NewBatchHandler(runner, store, cfg.OCR.MaxUploadSize, cfg.Batch.MaxImages, errs)

	ocrHealth := handler.OCRHealth{Engines: []handler.OCREngine{
		{Name: "tesseract", Binary: cfg.OCR.TesseractBinary},
		{Name: "ocrmypdf", Binary: cfg.OCR.OCRmyPDFBinary},
	}}

	engine := router.New(router.Options{
		APIKey:      cfg.APIKey,
		Debug:       cfg.Debug(),
		Logger:      logger,
		ImageHealth: ocrHealth.Handle,
	}, analysisHandler, batchHandler)

	return &App{Engine: engine, runner: runner, store: store}, nil
}

// Close waits for background batches and closes the session store.
func (a *App) Close() error {
	a.runner.Wait()
	return a.store.Close()
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(cfg.Debug())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close app", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Mode))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
