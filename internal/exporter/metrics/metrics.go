package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scene-exporter/internal/exporter/shape"
)

// ============================================================
// Export metrics
// ============================================================

// Metrics держит собственный реестр, чтобы тесты не конфликтовали с глобальным.
type Metrics struct {
	registry *prometheus.Registry
	exports  *prometheus.CounterVec
	shapes   *prometheus.CounterVec
	duration prometheus.Histogram
	stored   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scene_exporter",
			Name:      "exports_total",
			Help:      "Scene exports by outcome.",
		}, []string{"outcome"}),
		shapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scene_exporter",
			Name:      "shapes_total",
			Help:      "Classified paths by shape kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scene_exporter",
			Name:      "export_duration_seconds",
			Help:      "Time spent building and encoding a scene.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		stored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scene_exporter",
			Name:      "stored_exports_total",
			Help:      "Exports persisted to storage.",
		}),
	}

	m.registry.MustRegister(m.exports, m.shapes, m.duration, m.stored)
	return m
}

// ObserveShape подходит для mapper.Options.OnShape.
func (m *Metrics) ObserveShape(k shape.Kind) {
	m.shapes.WithLabelValues(k.String()).Inc()
}

// ObserveExport учитывает завершенный экспорт. outcome: ok, invalid, failed.
func (m *Metrics) ObserveExport(outcome string, elapsed time.Duration) {
	m.exports.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveStored() {
	m.stored.Inc()
}

// Registry нужен тестам и для регистрации дополнительных коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдает метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
