package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"letitflow-media/domain/classification"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockRecognizer implements classification.Recognizer for testing
type mockRecognizer struct {
	label classification.Label
	err   error
	paths []string
}

func (m *mockRecognizer) Classify(ctx context.Context, audioPath string) (classification.Prediction, error) {
	m.paths = append(m.paths, audioPath)
	if m.err != nil {
		return classification.Prediction{}, m.err
	}
	return classification.Prediction{Label: m.label}, nil
}

func (m *mockRecognizer) Close() error {
	return nil
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func newTestRouter(t *testing.T, rec *mockRecognizer, maxMB int64) (*gin.Engine, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewRouter(zerolog.Nop(), rec, RouterConfig{UploadDir: dir, CORS: true, MaxUploadMB: maxMB}), dir
}

func decodeJSON(t *testing.T, body io.Reader) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return out
}

func TestClassify_Success(t *testing.T) {
	rec := &mockRecognizer{label: classification.LabelMedium}
	router, dir := newTestRouter(t, rec, 32)

	body, contentType := multipartBody(t, "audio", "my take.wav", []byte("RIFF...."))
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := decodeJSON(t, w.Body)["class"]; got != "MEDIUM" {
		t.Errorf("class = %q, want MEDIUM", got)
	}

	if len(rec.paths) != 1 || filepath.Dir(rec.paths[0]) != dir {
		t.Fatalf("recognizer paths = %v, want one file in %s", rec.paths, dir)
	}
	if !strings.HasSuffix(rec.paths[0], "_my_take.wav") {
		t.Errorf("saved as %s, want a sanitised name ending in _my_take.wav", rec.paths[0])
	}
	saved, err := os.ReadFile(rec.paths[0])
	if err != nil {
		t.Fatalf("upload not kept: %v", err)
	}
	if string(saved) != "RIFF...." {
		t.Errorf("saved content = %q", saved)
	}
}

func TestClassify_MissingAudio(t *testing.T) {
	tests := []struct {
		name        string
		body        io.Reader
		contentType string
	}{
		{"wrong field name", nil, ""},
		{"no body", strings.NewReader(""), "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &mockRecognizer{label: classification.LabelShort}
			router, _ := newTestRouter(t, rec, 32)

			body, contentType := tt.body, tt.contentType
			if body == nil {
				body, contentType = multipartBody(t, "file", "clip.wav", []byte("x"))
			}
			req := httptest.NewRequest(http.MethodPost, "/classify", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decodeJSON(t, w.Body)["error"]; got != "No audio file provided" {
				t.Errorf("error = %q", got)
			}
			if len(rec.paths) != 0 {
				t.Error("recognizer must not run without an upload")
			}
		})
	}
}

func TestClassify_ProcessingError(t *testing.T) {
	rec := &mockRecognizer{err: errors.New("decode failed: bad header")}
	router, _ := newTestRouter(t, rec, 32)

	body, contentType := multipartBody(t, "audio", "broken.wav", []byte("garbage"))
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeJSON(t, w.Body)
	if resp["error"] != "An error occurred during processing." {
		t.Errorf("error = %q", resp["error"])
	}
	if strings.Contains(w.Body.String(), "bad header") {
		t.Error("internal error details leaked to the client")
	}
}

// contentRecognizer labels a clip with its own bytes. Every call waits until
// `expected` calls have started, so all uploads are on disk before any is read.
type contentRecognizer struct {
	started sync.WaitGroup
}

func newContentRecognizer(expected int) *contentRecognizer {
	r := &contentRecognizer{}
	r.started.Add(expected)
	return r
}

func (r *contentRecognizer) Classify(ctx context.Context, audioPath string) (classification.Prediction, error) {
	r.started.Done()
	r.started.Wait()
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return classification.Prediction{}, err
	}
	return classification.Prediction{Label: classification.Label(data)}, nil
}

func (r *contentRecognizer) Close() error {
	return nil
}

func TestClassify_ConcurrentUploadsWithSameName(t *testing.T) {
	rec := newContentRecognizer(2)
	dir := filepath.Join(t.TempDir(), "uploads")
	router := NewRouter(zerolog.Nop(), rec, RouterConfig{UploadDir: dir, MaxUploadMB: 32})

	clients := []string{"CLIENT-A", "CLIENT-B"}
	got := make([]string, len(clients))
	codes := make([]int, len(clients))

	var wg sync.WaitGroup
	for i, content := range clients {
		body, contentType := multipartBody(t, "audio", "blob", []byte(content))
		req := httptest.NewRequest(http.MethodPost, "/classify", body)
		req.Header.Set("Content-Type", contentType)

		wg.Add(1)
		go func(i int, req *http.Request) {
			defer wg.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes[i] = w.Code
			var resp ClassifyResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err == nil {
				got[i] = resp.Class
			}
		}(i, req)
	}
	wg.Wait()

	for i, content := range clients {
		if codes[i] != http.StatusOK {
			t.Errorf("request %d status = %d, want 200", i, codes[i])
		}
		if got[i] != content {
			t.Errorf("request %d was classified on %q, want its own upload %q", i, got[i], content)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("upload folder holds %d files, want 2 kept uploads", len(entries))
	}
}

func TestClassify_TooLarge(t *testing.T) {
	rec := &mockRecognizer{label: classification.LabelShort}
	router, _ := newTestRouter(t, rec, 1)

	body, contentType := multipartBody(t, "audio", "huge.wav", bytes.Repeat([]byte("x"), 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	if got := decodeJSON(t, w.Body)["error"]; got != "File too large" {
		t.Errorf("error = %q, want File too large", got)
	}
	if len(rec.paths) != 0 {
		t.Errorf("recognizer ran on an oversize upload: %v", rec.paths)
	}
}

func TestClassify_UnsafeFilename(t *testing.T) {
	rec := &mockRecognizer{label: classification.LabelLong}
	router, dir := newTestRouter(t, rec, 32)

	body, contentType := multipartBody(t, "audio", "../../../", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(rec.paths) != 1 || filepath.Dir(rec.paths[0]) != dir {
		t.Errorf("upload escaped the upload directory: %v", rec.paths)
	}
}

func TestUploadLimit(t *testing.T) {
	tests := []struct {
		mb   int64
		want int64
	}{
		{0, 0},
		{-1, 0},
		{1, 1 << 20},
		{32, 32 << 20},
		{1 << 44, math.MaxInt64},
		{math.MaxInt64, math.MaxInt64},
	}
	for _, tt := range tests {
		if got := uploadLimit(tt.mb); got != tt.want {
			t.Errorf("uploadLimit(%d) = %d, want %d", tt.mb, got, tt.want)
		}
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &mockRecognizer{}, 32)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decodeJSON(t, w.Body)["status"]; got != "ok" {
		t.Errorf("status = %q, want ok", got)
	}
}

func TestMetrics(t *testing.T) {
	rec := &mockRecognizer{label: classification.LabelShort}
	router, _ := newTestRouter(t, rec, 32)

	body, contentType := multipartBody(t, "audio", "clip.wav", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for _, want := range []string{
		`letitflow_classify_requests_total{format="wav",status="success"} 1`,
		`letitflow_predictions_total{label="SHORT"} 1`,
		"letitflow_classify_duration_seconds",
	} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCORS(t *testing.T) {
	router, _ := newTestRouter(t, &mockRecognizer{}, 32)

	req := httptest.NewRequest(http.MethodOptions, "/classify", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
