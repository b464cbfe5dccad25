package httpapi

import (
	"math"
	"net/http"
	"time"

	"letitflow-media/domain/classification"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// RouterConfig configures NewRouter
type RouterConfig struct {
	UploadDir   string
	CORS        bool
	MaxUploadMB int64
	Registry    *prometheus.Registry // nil creates a private registry
}

// NewRouter wires /classify, /healthz and /metrics around recognizer
func NewRouter(logger zerolog.Logger, recognizer classification.Recognizer, cfg RouterConfig) *gin.Engine {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := NewMetrics(reg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger.With().Str("component", "http").Logger()))
	if cfg.CORS {
		r.Use(cors.Default())
	}

	maxBytes := uploadLimit(cfg.MaxUploadMB)
	if maxBytes > 0 {
		r.MaxMultipartMemory = maxBytes
	}

	handler := NewClassifyHandler(logger, recognizer, cfg.UploadDir, metrics)
	r.POST("/classify", limitBody(maxBytes), handler.Handle)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

// uploadLimit converts megabytes to bytes, saturating instead of overflowing
func uploadLimit(mb int64) int64 {
	switch {
	case mb <= 0:
		return 0
	case mb > math.MaxInt64>>20:
		return math.MaxInt64
	}
	return mb << 20
}

// limitBody rejects request bodies larger than maxBytes; 0 disables the limit
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// requestLogger logs one line per request
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("client", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
