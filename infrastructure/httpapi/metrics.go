package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the classification endpoint
type Metrics struct {
	Requests    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Predictions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "letitflow",
			Name:      "classify_requests_total",
			Help:      "Classification requests by outcome and upload format.",
		}, []string{"status", "format"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "letitflow",
			Name:      "classify_duration_seconds",
			Help:      "Time spent decoding, extracting features and running inference.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "letitflow",
			Name:      "predictions_total",
			Help:      "Predicted labels.",
		}, []string{"label"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.Duration, m.Predictions)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
