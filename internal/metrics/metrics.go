// Package metrics exposes playback and provider counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/logging"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TracksPlayed     *prometheus.CounterVec
	PlaybackErrors   prometheus.Counter
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	QueueLength      *prometheus.GaugeVec
	Notifications    *prometheus.CounterVec
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TracksPlayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmony_tracks_played_total",
				Help: "Tracks started, by queue context type",
			},
			[]string{"context"},
		),
		PlaybackErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "harmony_playback_errors_total",
				Help: "Audio sessions that failed to load or play",
			},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmony_provider_requests_total",
				Help: "HTTP requests to music providers, by service and status",
			},
			[]string{"service", "status"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harmony_provider_request_duration_seconds",
				Help:    "Provider request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmony_cache_lookups_total",
				Help: "Suggestion cache lookups, by cache and result",
			},
			[]string{"cache", "result"},
		),
		QueueLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harmony_queue_length",
				Help: "Tracks waiting in each queue",
			},
			[]string{"queue"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harmony_notifications_total",
				Help: "User notifications, by kind",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.TracksPlayed,
		m.PlaybackErrors,
		m.ProviderRequests,
		m.ProviderLatency,
		m.CacheLookups,
		m.QueueLength,
		m.Notifications,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordPlay counts a started track.
func (m *Metrics) RecordPlay(contextType string) {
	if m == nil {
		return
	}
	m.TracksPlayed.WithLabelValues(contextType).Inc()
}

// RecordPlaybackError counts a failed session.
func (m *Metrics) RecordPlaybackError() {
	if m == nil {
		return
	}
	m.PlaybackErrors.Inc()
}

// ObserveRequest records a provider HTTP attempt. Status 0 means the
// request never got a response.
func (m *Metrics) ObserveRequest(service string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.ProviderRequests.WithLabelValues(service, label).Inc()
	m.ProviderLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

// RecordCache counts a cache hit or miss.
func (m *Metrics) RecordCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// SetQueueLengths publishes both queue sizes.
func (m *Metrics) SetQueueLengths(priority, queue int) {
	if m == nil {
		return
	}
	m.QueueLength.WithLabelValues("priority").Set(float64(priority))
	m.QueueLength.WithLabelValues("queue").Set(float64(queue))
}

// RecordNotification counts a notification.
func (m *Metrics) RecordNotification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

// Handler serves /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"harmony"}`))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	log = logging.OrNop(log)
	server := &http.Server{
		Addr:         addr,
		Handler:      m.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down metrics server", zap.Error(err))
		}
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
