package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"disastersheet/cache"
	"disastersheet/gateway"
	"disastersheet/models"
	"disastersheet/stubllm"
)

func newTestRouter(maxImages int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gw := gateway.New(stubllm.NewClient(), cache.New(), time.Hour)
	h := NewHandlers(gw, "Stub", maxImages)

	router := gin.New()
	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/classify", h.Classify)
		api.POST("/table", h.BuildTable)
		api.POST("/table/csv", h.ExportCSV)
	}
	return router
}

func multipartImages(t *testing.T, payloads ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, payload := range payloads {
		part, err := writer.CreateFormFile("images", "image.png")
		if err != nil {
			t.Fatalf("failed to create form file %d: %v", i, err)
		}
		if _, err := part.Write([]byte(payload)); err != nil {
			t.Fatalf("failed to write form file %d: %v", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(0)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("body = %q, want a healthy status", w.Body.String())
	}
}

func TestClassifyNoImages(t *testing.T) {
	router := newTestRouter(0)
	body, contentType := multipartImages(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/classify", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestClassifyTooManyImages(t *testing.T) {
	router := newTestRouter(1)
	body, contentType := multipartImages(t, "one", "two")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/classify", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestClassifyBatch(t *testing.T) {
	router := newTestRouter(0)
	body, contentType := multipartImages(t, "image-one", "image-two", "image-one")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/classify", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp models.ClassifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.BatchID == "" {
		t.Error("batch_id must be set")
	}
	if resp.Source != "Stub" {
		t.Errorf("source = %q, want %q", resp.Source, "Stub")
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	for i, r := range resp.Results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Error != "" || r.Answer == "" {
			t.Errorf("result %d: answer=%q error=%q", i, r.Answer, r.Error)
		}
	}
	// Identical payloads hit the cache and yield identical answers.
	if resp.Results[0].Answer != resp.Results[2].Answer {
		t.Error("identical images must produce identical answers")
	}
	if resp.Results[0].Answer == resp.Results[1].Answer {
		t.Error("differing images must produce differing stub answers")
	}
}

func TestBuildTable(t *testing.T) {
	router := newTestRouter(0)
	payload, _ := json.Marshal(models.TableRequest{Answers: []string{
		`<json>{"Description": "fire", "Count": 5}</json>`,
		"not json at all",
		`{"Description": "flood", "Count": 2}`,
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/table", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp models.TableResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Header) != 2 || resp.Header[0] != "Description" {
		t.Errorf("header = %v", resp.Header)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (malformed answer dropped)", len(resp.Rows))
	}
	if resp.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", resp.Dropped)
	}
	for i, row := range resp.Rows {
		if len(row) != len(resp.Header) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(resp.Header))
		}
	}
}

func TestBuildTableInvalidBody(t *testing.T) {
	router := newTestRouter(0)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/table", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(0)
	payload, _ := json.Marshal(models.TableRequest{Answers: []string{
		`{"Description": "fire", "Count": 5}`,
		`{"Description": "flood", "Count": 2}`,
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/table/csv", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	want := "Description,Count\nfire,5\nflood,2\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
