package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"letitflow-media/domain/classification"
	"letitflow-media/infrastructure/filesystem"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Response messages are part of the public contract of /classify
const (
	msgNoAudio         = "No audio file provided"
	msgProcessingError = "An error occurred during processing."
	msgTooLarge        = "File too large"
)

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClassifyResponse is the JSON body of a successful classification
type ClassifyResponse struct {
	Class string `json:"class"`
}

// ClassifyHandler stores an uploaded clip and runs the recognizer on it
type ClassifyHandler struct {
	recognizer classification.Recognizer
	uploadDir  string
	metrics    *Metrics
	logger     zerolog.Logger
}

// NewClassifyHandler creates a handler saving uploads under uploadDir
func NewClassifyHandler(logger zerolog.Logger, recognizer classification.Recognizer, uploadDir string, metrics *Metrics) *ClassifyHandler {
	return &ClassifyHandler{
		recognizer: recognizer,
		uploadDir:  uploadDir,
		metrics:    metrics,
		logger:     logger.With().Str("component", "classify").Logger(),
	}
}

// Handle serves POST /classify
func (h *ClassifyHandler) Handle(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.Requests.WithLabelValues("too_large", "unknown").Inc()
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
			return
		}
		h.logger.Warn().Err(err).Msg(msgNoAudio)
		h.metrics.Requests.WithLabelValues("bad_request", "unknown").Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgNoAudio})
		return
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if format == "" {
		format = "unknown"
	}
	timer := prometheus.NewTimer(h.metrics.Duration.WithLabelValues(format))
	defer timer.ObserveDuration()

	// Unique per request; concurrent uploads of "blob" must not share a file
	name := filesystem.UploadFilename(file.Filename)
	path := filepath.Join(h.uploadDir, name)

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.fail(c, format, "failed to create upload directory", err)
		return
	}
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.fail(c, format, "failed to save upload", err)
		return
	}
	h.logger.Info().Str("file", name).Str("path", path).Int64("size", file.Size).Msg("upload received")

	pred, err := h.recognizer.Classify(c.Request.Context(), path)
	if err != nil {
		h.fail(c, format, "failed to classify upload", err)
		return
	}

	h.metrics.Requests.WithLabelValues("success", format).Inc()
	h.metrics.Predictions.WithLabelValues(string(pred.Label)).Inc()
	h.logger.Info().Str("file", name).Str("class", string(pred.Label)).Msg("prediction")

	c.JSON(http.StatusOK, ClassifyResponse{Class: string(pred.Label)})
}

// fail logs the cause and answers with the generic processing error
func (h *ClassifyHandler) fail(c *gin.Context, format, msg string, err error) {
	h.logger.Error().Err(err).Msg(msg)
	h.metrics.Requests.WithLabelValues("error", format).Inc()
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgProcessingError})
}
