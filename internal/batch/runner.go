package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wordflow/internal/analysis"
	"wordflow/internal/extract"
)

const (
	DefaultWorkers   = 4
	DefaultMaxImages = 100
)

// ImageProcessor extracts text from one uploaded image.
type ImageProcessor interface {
	Process(ctx context.Context, content []byte, filename string) extract.ProcessingResult
}

// RunnerConfig wires a Runner.
type RunnerConfig struct {
	Store         *Store
	Images        ImageProcessor
	Analyzer      *analysis.Analyzer
	Engine        string
	Workers       int
	MaxImages     int
	MinWordLength int
	Logger        *zap.Logger
}

// Runner owns background batch processing.
type Runner struct {
	store         *Store
	images        ImageProcessor
	analyzer      *analysis.Analyzer
	engine        string
	workers       int
	maxImages     int
	minWordLength int
	logger        *zap.Logger

	wg sync.WaitGroup
}

// NewRunner builds a Runner, filling in defaults for zero values.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = DefaultMaxImages
	}
	if cfg.Engine == "" {
		cfg.Engine = "tesseract"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = analysis.New(analysis.Config{Logger: cfg.Logger})
	}
	return &Runner{
		store:         cfg.Store,
		images:        cfg.Images,
		analyzer:      cfg.Analyzer,
		engine:        cfg.Engine,
		workers:       cfg.Workers,
		maxImages:     cfg.MaxImages,
		minWordLength: cfg.MinWordLength,
		logger:        cfg.Logger,
	}
}

// Start validates the submission and records a pending session.
func (r *Runner) Start(images []Image) (*Session, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if len(images) > r.maxImages {
		return nil, fmt.Errorf("%w: %d images, maximum is %d", ErrTooManyImages, len(images), r.maxImages)
	}

	session := &Session{
		ID:          uuid.NewString(),
		Status:      StatusPending,
		Engine:      r.engine,
		StartedAt:   time.Now().UTC(),
		TotalImages: len(images),
	}
	if err := r.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Submit starts a session and processes it in the background.
// The returned session is a snapshot taken before any image is processed.
func (r *Runner) Submit(ctx context.Context, images []Image) (*Session, error) {
	session, err := r.Start(images)
	if err != nil {
		return nil, err
	}

	snapshot := *session
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Run(ctx, session, images); err != nil {
			r.logger.Error("batch run failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}()
	return &snapshot, nil
}

// Wait blocks until every background run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Run processes every image with a bounded pool of workers. A failing image
// is recorded on its item and never stops the others.
func (r *Runner) Run(ctx context.Context, session *Session, images []Image) error {
	logger := r.logger.With(zap.String("session_id", session.ID))

	var mu sync.Mutex
	var totalTime float64

	mu.Lock()
	session.Status = StatusProcessing
	err := r.store.UpdateSession(session)
	mu.Unlock()
	if err != nil {
		return fmt.Errorf("mark session processing: %w", err)
	}
	logger.Info("batch started", zap.Int("images", len(images)), zap.Int("workers", r.workerCount(len(images))))

	var g errgroup.Group
	g.SetLimit(r.workerCount(len(images)))

	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			item := r.processImage(ctx, session.ID, i, img)
			if err := r.store.PutItem(item); err != nil {
				logger.Error("failed to store batch item", zap.Int("index", i), zap.Error(err))
			}

			mu.Lock()
			defer mu.Unlock()
			session.ProcessedImages++
			if item.Success {
				session.SuccessfulImages++
			} else {
				session.FailedImages++
			}
			totalTime += item.ProcessingTime
			if err := r.store.UpdateSession(session); err != nil {
				logger.Error("failed to update batch progress", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()

	completed := time.Now().UTC()
	session.CompletedAt = &completed
	session.Status = StatusCompleted
	if session.SuccessfulImages == 0 {
		session.Status = StatusFailed
	}
	if session.ProcessedImages > 0 {
		session.AverageProcessingTime = totalTime / float64(session.ProcessedImages)
	}

	logger.Info("batch finished",
		zap.String("status", string(session.Status)),
		zap.Int("successful", session.SuccessfulImages),
		zap.Int("failed", session.FailedImages),
	)
	if err := r.store.UpdateSession(session); err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	return nil
}

func (r *Runner) workerCount(images int) int {
	return max(1, min(r.workers, images))
}

func (r *Runner) processImage(ctx context.Context, sessionID string, index int, img Image) (item Item) {
	started := time.Now()
	item = Item{
		SessionID: sessionID,
		Index:     index,
		ImageName: img.Name,
		Size:      int64(len(img.Content)),
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic while processing batch image",
				zap.String("session_id", sessionID),
				zap.String("image", img.Name),
				zap.Any("panic", rec),
			)
			item.Success = false
			item.Result = nil
			item.Error = fmt.Sprintf("unexpected error: %v", rec)
		}
		item.ProcessingTime = time.Since(started).Seconds()
	}()

	if err := ctx.Err(); err != nil {
		item.Error = err.Error()
		return item
	}

	res := r.images.Process(ctx, img.Content, img.Name)
	if !res.Success {
		item.Error = res.ErrorMessage
		return item
	}

	result := r.analyzer.Analyze(res.Text, r.minWordLength)
	engine := r.engine
	if res.Info != nil {
		if res.Info.Engine != "" {
			engine = res.Info.Engine
		}
		item.Confidence = res.Info.Confidence
	}
	title := analysis.ExtractTitle(res.Text, analysis.KindImage, result.Sentences, analysis.TitleContext{Engine: engine})
	report := analysis.NewReport(title, result)

	item.Success = true
	item.Title = title
	item.Result = &report
	return item
}
