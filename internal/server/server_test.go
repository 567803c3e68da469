package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"wordflow/internal/config"
)

const sampleText = "This is a test. It has many words."

func testConfig(t *testing.T, apiKey string) *config.Config {
	t.Helper()
	return &config.Config{
		Port:   "0",
		APIKey: apiKey,
		Mode:   config.ModeProd,
		OCR: config.OCRConfig{
			Language:        "eng",
			Timeout:         5 * time.Second,
			TesseractBinary: "wordflow-missing-tesseract",
			OCRmyPDFBinary:  "wordflow-missing-ocrmypdf",
			MaxUploadSize:   1 << 20,
		},
		Batch: config.BatchConfig{
			MaxWorkers: 2,
			MaxImages:  5,
			DBPath:     filepath.Join(t.TempDir(), "batch.db"),
		},
		Analysis: config.AnalysisConfig{MinWordLength: 1},
	}
}

func startApp(t *testing.T, cfg *config.Config) (*App, *httptest.Server) {
	t.Helper()
	app, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	ts := httptest.NewServer(app.Engine)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts
}

func postJSON(t *testing.T, url, apiKey, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestServer_TextFlowWithAPIKey(t *testing.T) {
	_, ts := startApp(t, testConfig(t, "secret"))

	// Missing key => 401
	resp, _ := postJSON(t, ts.URL+"/api/v1/text", "", `{"text":"`+sampleText+`"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	// Include key => 200
	resp, body := postJSON(t, ts.URL+"/api/v1/text", "secret", `{"text":"`+sampleText+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.StatusCode, body)
	}

	var report struct {
		Title            string   `json:"title"`
		Words            [][]any  `json:"words"`
		Sentences        []string `json:"sentences"`
		TotalWords       int      `json:"total_words"`
		TotalUniqueWords int      `json:"total_unique_words"`
		TotalSentences   int      `json:"total_sentences"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TotalWords != 8 || report.TotalUniqueWords != 8 || report.TotalSentences != 2 {
		t.Fatalf("unexpected counts: %s", body)
	}
	if len(report.Words) != 8 || report.Words[0][0] != "a" {
		t.Fatalf("words should be sorted pairs: %s", body)
	}
	if !strings.HasPrefix(report.Title, "This is a test") {
		t.Fatalf("unexpected title: %q", report.Title)
	}
}

func TestServer_ValidationAndStatistics(t *testing.T) {
	_, ts := startApp(t, testConfig(t, ""))

	resp, body := postJSON(t, ts.URL+"/api/v1/text", "", `{"text":"short"}`)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), "Text is too short (minimum 10 characters)") {
		t.Fatalf("unexpected response %d: %s", resp.StatusCode, body)
	}

	resp, body = postJSON(t, ts.URL+"/api/v1/statistics", "", `{"text":"`+sampleText+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	var stats map[string]float64
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["average_word_length"] != 3.13 || stats["average_sentence_length"] != 4 {
		t.Fatalf("unexpected stats: %s", body)
	}

	resp, body = postJSON(t, ts.URL+"/api/v1/statistics", "", `{"text":"`+sampleText+`","min_word_length":4}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["total_words"] != 4 {
		t.Fatalf("expected min_word_length to apply: %s", body)
	}
}

func TestServer_HealthEndpoints(t *testing.T) {
	_, ts := startApp(t, testConfig(t, "secret"))

	resp, body := do(t, mustRequest(t, http.MethodGet, ts.URL+"/api/v1/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	want := `{"message":"Word Flow Text Analyzer API is running","status":"healthy","version":"v1.0.0"}`
	if string(body) != want {
		t.Fatalf("unexpected body: %s", body)
	}

	resp, body = do(t, mustRequest(t, http.MethodGet, ts.URL+"/api/v1/image/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	want = `{"data":{"available_engines":[],"basic_functionality":false,"ocrmypdf_available":false,"tesseract_available":false},"success":true}`
	if string(body) != want {
		t.Fatalf("unexpected image health body: %s", body)
	}
}

func TestServer_PDFWithoutOCRBinaryIsBadGateway(t *testing.T) {
	_, ts := startApp(t, testConfig(t, ""))

	req := mustRequest(t, http.MethodPost, ts.URL+"/api/v1/pdf", nil)
	attachFiles(t, req, "file", map[string]string{"doc.pdf": "%PDF-1.4"})

	resp, body := do(t, req)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d: %s", resp.StatusCode, body)
	}
}

func TestServer_BatchFlow(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := filepath.Join(t.TempDir(), "fake-tesseract")
	script := "#!/bin/sh\n" +
		"if grep -q unreadable \"$1\"; then echo 'cannot read' >&2; exit 1; fi\n" +
		"n=0\n" +
		"for w in Scanned words here. And more words.; do n=$((n+1)); printf '5\\t1\\t1\\t1\\t1\\t%d\\t0\\t0\\t1\\t1\\t90\\t%s\\n' \"$n\" \"$w\"; done\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t, "")
	cfg.OCR.TesseractBinary = bin
	app, ts := startApp(t, cfg)

	req := mustRequest(t, http.MethodPost, ts.URL+"/api/v1/image/batch", nil)
	attachFiles(t, req, "images", map[string]string{"good.png": "pixels", "bad.png": "unreadable pixels"})
	resp, body := do(t, req)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", resp.StatusCode, body)
	}
	var accepted struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &accepted); err != nil || accepted.SessionID == "" {
		t.Fatalf("missing session id: %s", body)
	}

	app.runner.Wait()

	resp, body = do(t, mustRequest(t, http.MethodGet, ts.URL+"/api/v1/image/batch/"+accepted.SessionID, nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"completed"`) {
		t.Fatalf("unexpected status response %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, mustRequest(t, http.MethodGet, ts.URL+"/api/v1/image/batch/"+accepted.SessionID+"/results", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.StatusCode, body)
	}
	var results struct {
		Results []struct {
			ImageName string `json:"image_name"`
			Success   bool   `json:"success"`
			Title     string `json:"title"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results.Results) != 2 {
		t.Fatalf("expected 2 results, got %s", body)
	}
	successes := 0
	for _, r := range results.Results {
		if r.Success {
			successes++
			if r.Title != "Image Text - TESSERACT OCR" {
				t.Fatalf("unexpected title: %q", r.Title)
			}
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one success: %s", body)
	}

	resp, _ = do(t, mustRequest(t, http.MethodGet, ts.URL+"/api/v1/image/batch/unknown", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.StatusCode)
	}
}

func mustRequest(t *testing.T, method, url string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func attachFiles(t *testing.T, req *http.Request, field string, files map[string]string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write([]byte(content))
	}
	writer.Close()

	req.Body = io.NopCloser(body)
	req.ContentLength = int64(body.Len())
	req.Header.Set("Content-Type", writer.FormDataContentType())
}
