package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"disastersheet/gateway"
	"disastersheet/metrics"
	"disastersheet/models"
	"disastersheet/normalizer"
	"disastersheet/prompt"
	"disastersheet/spreadsheet"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	gateway   *gateway.Gateway
	source    string
	maxImages int
}

// NewHandlers creates new HTTP handlers
func NewHandlers(gw *gateway.Gateway, source string, maxImages int) *Handlers {
	return &Handlers{gateway: gw, source: source, maxImages: maxImages}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "disastersheet",
	})
}

// Classify accepts multipart image uploads and classifies each image with one
// LLM call, answered from the response cache whenever the content matches a
// recent request. A failing image gets an error slot; the batch continues.
func (h *Handlers) Classify(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No images provided"})
		return
	}
	if h.maxImages > 0 && len(files) > h.maxImages {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Too many images: %d exceeds the limit of %d", len(files), h.maxImages),
		})
		return
	}

	batchID := uuid.New().String()
	log.Infof("classify batch %s: %d image(s)", batchID, len(files))

	results := make([]models.ClassifyResult, 0, len(files))
	for i, fh := range files {
		dataURI, err := fileToDataURI(fh)
		if err != nil {
			log.Errorf("batch %s image %d: failed to read upload: %v", batchID, i, err)
			results = append(results, models.ClassifyResult{Index: i, Error: "failed to read image"})
			continue
		}

		start := time.Now()
		answer, err := h.gateway.Classify(prompt.Build([]string{dataURI}))
		metrics.ClassifyDurationSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ClassifyTotal.WithLabelValues("error").Inc()
			log.Errorf("batch %s image %d: %v", batchID, i, err)
			results = append(results, models.ClassifyResult{Index: i, Error: err.Error()})
			continue
		}
		metrics.ClassifyTotal.WithLabelValues("ok").Inc()
		results = append(results, models.ClassifyResult{Index: i, Answer: answer})
	}

	c.JSON(http.StatusOK, models.ClassifyResponse{
		BatchID: batchID,
		Source:  h.source,
		Results: results,
	})
}

// BuildTable normalizes accumulated raw answers into records and projects
// them as a table. Unparseable answers are dropped, never fatal.
func (h *Handlers) BuildTable(c *gin.Context) {
	req, ok := bindTableRequest(c)
	if !ok {
		return
	}
	records := normalizer.Normalize(req.Answers)
	table := spreadsheet.Project(records)
	c.JSON(http.StatusOK, models.TableResponse{
		Header:  table.Header,
		Rows:    table.Rows,
		Dropped: len(req.Answers) - len(records),
	})
}

// ExportCSV renders the same projection as text/csv. Cells are joined by
// bare commas without quoting, matching the table contract.
func (h *Handlers) ExportCSV(c *gin.Context) {
	req, ok := bindTableRequest(c)
	if !ok {
		return
	}
	records := normalizer.Normalize(req.Answers)
	table := spreadsheet.Project(records)
	c.Header("Content-Disposition", `attachment; filename="classification.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(table.CSV()))
}

func bindTableRequest(c *gin.Context) (models.TableRequest, bool) {
	var req models.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return models.TableRequest{}, false
	}
	return req, true
}

// fileToDataURI reads an uploaded file into a base64 data URI, the payload
// form every provider client accepts.
func fileToDataURI(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
