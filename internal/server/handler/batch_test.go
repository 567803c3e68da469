package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wordflow/internal/batch"
)

type fakeBatch struct {
	sessions map[string]*batch.Session
	items    []batch.Item
	got      []batch.Image
	err      error
}

func (f *fakeBatch) Submit(_ context.Context, images []batch.Image) (*batch.Session, error) {
	f.got = images
	if f.err != nil {
		return nil, f.err
	}
	return &batch.Session{ID: "s-1", Status: batch.StatusPending, TotalImages: len(images), StartedAt: time.Now()}, nil
}

func (f *fakeBatch) GetSession(id string) (*batch.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, batch.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeBatch) ListItems(string) ([]batch.Item, error) {
	return f.items, nil
}

func newBatchRequest(t *testing.T, names ...string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fmt.Fprintf(part, "bytes of %s", name)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/batch", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestBatchSubmit_Accepted(t *testing.T) {
	fake := &fakeBatch{}
	h := NewBatchHandler(fake, fake, 1<<20, 10, Errors{})

	w := serve(t, http.MethodPost, "/batch", h.HandleSubmit, newBatchRequest(t, "a.png", "b.jpg"))

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", w.Code, w.Body.String())
	}
	if len(fake.got) != 2 || fake.got[1].Name != "b.jpg" || string(fake.got[0].Content) != "bytes of a.png" {
		t.Fatalf("unexpected images: %+v", fake.got)
	}
	body := decodeBody(t, w)
	if body["session_id"] != "s-1" || body["total_images"] != float64(2) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestBatchSubmit_Errors(t *testing.T) {
	h := NewBatchHandler(&fakeBatch{}, &fakeBatch{}, 1<<20, 10, Errors{})
	w := serve(t, http.MethodPost, "/batch", h.HandleSubmit, newBatchRequest(t))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for no images, got %d", w.Code)
	}

	tooMany := &fakeBatch{err: fmt.Errorf("%w: 3 images, maximum is 2", batch.ErrTooManyImages)}
	h = NewBatchHandler(tooMany, tooMany, 1<<20, 10, Errors{})
	w = serve(t, http.MethodPost, "/batch", h.HandleSubmit, newBatchRequest(t, "a.png", "b.png", "c.png"))
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "maximum is 2") {
		t.Fatalf("expected 400 for too many images, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBatchStatus(t *testing.T) {
	fake := &fakeBatch{sessions: map[string]*batch.Session{
		"s-1": {ID: "s-1", Status: batch.StatusProcessing, TotalImages: 3, ProcessedImages: 1},
	}}
	h := NewBatchHandler(fake, fake, 1<<20, 10, Errors{})

	w := serve(t, http.MethodGet, "/batch/:id", h.HandleStatus, httptest.NewRequest(http.MethodGet, "/batch/s-1", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"processed_images":1`) {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}

	w = serve(t, http.MethodGet, "/batch/:id", h.HandleStatus, httptest.NewRequest(http.MethodGet, "/batch/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestBatchResults(t *testing.T) {
	fake := &fakeBatch{
		sessions: map[string]*batch.Session{
			"busy": {ID: "busy", Status: batch.StatusProcessing},
			"done": {ID: "done", Status: batch.StatusCompleted},
		},
		items: []batch.Item{{SessionID: "done", Index: 0, ImageName: "a.png", Success: true}},
	}
	h := NewBatchHandler(fake, fake, 1<<20, 10, Errors{})

	w := serve(t, http.MethodGet, "/batch/:id/results", h.HandleResults, httptest.NewRequest(http.MethodGet, "/batch/busy/results", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unfinished session, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "Session is not completed yet. Current status: processing" {
		t.Fatalf("unexpected error: %v", body["error"])
	}

	w = serve(t, http.MethodGet, "/batch/:id/results", h.HandleResults, httptest.NewRequest(http.MethodGet, "/batch/done/results", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"image_name":"a.png"`) {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}
}
