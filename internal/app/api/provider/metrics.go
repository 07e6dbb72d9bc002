package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "captionflow/internal/app/errors"
)

// ProviderStats contains statistics for a specific provider
type ProviderStats struct {
	Provider           string           `json:"provider"`
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	SuccessRate        float64          `json:"success_rate"`
	AverageLatencyMs   float64          `json:"average_latency_ms"`
	LastUsed           int64            `json:"last_used_timestamp"`
	ErrorBreakdown     map[string]int64 `json:"error_breakdown,omitempty"`
}

// Metrics records provider calls both as prometheus series and as an
// in-memory snapshot served by the providers endpoint.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "captionflow_provider_requests_total",
			Help: "Provider calls by provider, operation and outcome.",
		}, []string{"provider", "operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "captionflow_provider_latency_seconds",
			Help:    "Provider call latency.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 180, 600},
		}, []string{"provider", "operation"}),
		stats: make(map[string]*ProviderStats),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.latency)
	}
	return m
}

// Observe records one call that started at started and ended with err.
func (m *Metrics) Observe(providerName, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	elapsed := time.Since(started)
	outcome := Outcome(err)

	m.requests.WithLabelValues(providerName, operation, outcome).Inc()
	m.latency.WithLabelValues(providerName, operation).Observe(elapsed.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(providerName)
	stats.TotalRequests++
	stats.LastUsed = time.Now().Unix()
	if err == nil {
		stats.SuccessfulRequests++
		latencyMs := float64(elapsed.Milliseconds())
		if stats.AverageLatencyMs == 0 {
			stats.AverageLatencyMs = latencyMs
		} else {
			// Weighted average favoring recent results
			stats.AverageLatencyMs = stats.AverageLatencyMs*0.8 + latencyMs*0.2
		}
	} else {
		stats.FailedRequests++
		stats.ErrorBreakdown[outcome]++
	}
	stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
}

// Snapshot returns a copy of the per-provider statistics.
func (m *Metrics) Snapshot() map[string]ProviderStats {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]ProviderStats, len(m.stats))
	for name, s := range m.stats {
		c := *s
		c.ErrorBreakdown = make(map[string]int64, len(s.ErrorBreakdown))
		for k, v := range s.ErrorBreakdown {
			c.ErrorBreakdown[k] = v
		}
		out[name] = c
	}
	return out
}

// getOrCreateStats must be called with the lock held.
func (m *Metrics) getOrCreateStats(providerName string) *ProviderStats {
	stats, exists := m.stats[providerName]
	if !exists {
		stats = &ProviderStats{
			Provider:       providerName,
			ErrorBreakdown: make(map[string]int64),
		}
		m.stats[providerName] = stats
	}
	return stats
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	var (
		pe *apperrors.ProviderError
		ue *apperrors.UnsupportedMediaError
		ce *apperrors.ConfigurationError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &pe):
		return "provider_error"
	case errors.As(err, &ue):
		return "unsupported_media"
	case errors.As(err, &ce):
		return "configuration"
	default:
		return "error"
	}
}
