package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegenerationMetrics records storefront regeneration runs.
type RegenerationMetrics struct {
	duration      *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	images        *prometheus.CounterVec
}

// NewRegenerationMetrics registers the regeneration metrics on the provided registerer.
func NewRegenerationMetrics(reg prometheus.Registerer) *RegenerationMetrics {
	if reg == nil {
		return &RegenerationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_regeneration_duration_seconds",
		Help:    "Duration of storefront regeneration runs in seconds.",
		Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"outcome"})
	stageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_regeneration_stage_failures_total",
		Help: "Regeneration stages that ended with an error.",
	}, []string{"stage"})
	images := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_images_processed_total",
		Help: "Images processed by the media pipeline by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, stageFailures, images)
	return &RegenerationMetrics{
		duration:      duration,
		stageFailures: stageFailures,
		images:        images,
	}
}

// ObserveRun records the duration of a finished run.
func (m *RegenerationMetrics) ObserveRun(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncStageFailure increments the failure counter for a stage.
func (m *RegenerationMetrics) IncStageFailure(stage string) {
	if m == nil || m.stageFailures == nil {
		return
	}
	m.stageFailures.WithLabelValues(normalizeLabel(stage)).Inc()
}

// AddImages adds n to the image counter for outcome ("created" or "failed").
func (m *RegenerationMetrics) AddImages(outcome string, n int) {
	if m == nil || m.images == nil || n <= 0 {
		return
	}
	m.images.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
