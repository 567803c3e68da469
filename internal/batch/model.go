// Package batch runs OCR and word analysis over many images in the
// background and keeps per-session progress in a bbolt file.
package batch

import (
	"errors"
	"time"

	"wordflow/internal/analysis"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoImages        = errors.New("no images provided")
	ErrTooManyImages   = errors.New("too many images in batch")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Finished reports whether no more items will be written for the session.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session tracks one batch submission.
type Session struct {
	ID                    string     `json:"session_id"`
	Status                Status     `json:"status"`
	Engine                string     `json:"engine"`
	StartedAt             time.Time  `json:"started_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	TotalImages           int        `json:"total_images"`
	ProcessedImages       int        `json:"processed_images"`
	SuccessfulImages      int        `json:"successful_images"`
	FailedImages          int        `json:"failed_images"`
	AverageProcessingTime float64    `json:"average_processing_time"`
}

// Item is the outcome for a single image. ProcessingTime is in seconds.
type Item struct {
	SessionID      string           `json:"session_id"`
	Index          int              `json:"index"`
	ImageName      string           `json:"image_name"`
	Size           int64            `json:"image_size"`
	Success        bool             `json:"success"`
	Error          string           `json:"error,omitempty"`
	Title          string           `json:"title,omitempty"`
	Result         *analysis.Report `json:"result,omitempty"`
	Confidence     float64          `json:"confidence_score,omitempty"`
	ProcessingTime float64          `json:"processing_time"`
}

// Image is an uploaded file waiting to be processed.
type Image struct {
	Name    string
	Content []byte
}
