package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wordflow/internal/batch"
)

// BatchRunner starts background batch sessions.
type BatchRunner interface {
	Submit(ctx context.Context, images []batch.Image) (*batch.Session, error)
}

// BatchStore reads session progress and results.
type BatchStore interface {
	GetSession(id string) (*batch.Session, error)
	ListItems(sessionID string) ([]batch.Item, error)
}

// BatchHandler serves the batch image endpoints.
type BatchHandler struct {
	runner        BatchRunner
	store         BatchStore
	maxUploadSize int64
	maxImages     int
	errors        Errors
}

// NewBatchHandler builds the handler.
func NewBatchHandler(runner BatchRunner, store BatchStore, maxUploadSize int64, maxImages int, errs Errors) *BatchHandler {
	return &BatchHandler{
		runner:        runner,
		store:         store,
		maxUploadSize: maxUploadSize,
		maxImages:     maxImages,
		errors:        errs,
	}
}

// HandleSubmit accepts repeated "images" files and starts processing them.
func (h *BatchHandler) HandleSubmit(c *gin.Context) {
	uploads, err := readUploads(c, "images", h.maxUploadSize, h.maxUploadSize*int64(h.maxImages))
	switch {
	case errors.Is(err, errMissingFile):
		abort(c, http.StatusBadRequest, "No image files provided")
		return
	case err != nil:
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	images := make([]batch.Image, 0, len(uploads))
	for _, u := range uploads {
		images = append(images, batch.Image{Name: u.name, Content: u.content})
	}

	// Processing outlives the request.
	session, err := h.runner.Submit(context.WithoutCancel(c.Request.Context()), images)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"session_id":   session.ID,
		"message":      "Batch processing started",
		"total_images": session.TotalImages,
		"session":      session,
	})
}

// HandleStatus returns the progress of a session.
func (h *BatchHandler) HandleStatus(c *gin.Context) {
	session, err := h.store.GetSession(c.Param("id"))
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// HandleResults returns every item of a finished session.
func (h *BatchHandler) HandleResults(c *gin.Context) {
	session, err := h.store.GetSession(c.Param("id"))
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	if !session.Status.Finished() {
		abort(c, http.StatusBadRequest, "Session is not completed yet. Current status: "+string(session.Status))
		return
	}

	items, err := h.store.ListItems(session.ID)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"results": items,
	})
}
