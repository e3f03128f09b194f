package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "booking_widget"
	metricsSubsystem = "artifacts"

	// InstantiationSourceCatalog labels artifacts built for catalog shops.
	InstantiationSourceCatalog = "catalog"
	// InstantiationSourceRequest labels artifacts built from request bodies.
	InstantiationSourceRequest = "request"

	instantiationResultOK                   = "ok"
	instantiationResultInvalidConfiguration = "invalid_configuration"
	instantiationResultTemplateDefect       = "template_defect"
	instantiationResultNotModified          = "not_modified"
)

// WidgetMetrics exposes counters for artifact instantiation.
type WidgetMetrics struct {
	instantiationsTotal *prometheus.CounterVec
	artifactBytes       *prometheus.HistogramVec
}

func NewWidgetMetrics(registerer prometheus.Registerer) *WidgetMetrics {
	metrics := &WidgetMetrics{
		instantiationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "instantiations_total",
			Help:      "Total widget template instantiations",
		}, []string{"source", "result"}),
		artifactBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "size_bytes",
			Help:      "Size of instantiated widget artifacts",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 6),
		}, []string{"source"}),
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	registerer.MustRegister(metrics.instantiationsTotal, metrics.artifactBytes)
	return metrics
}

func (metrics *WidgetMetrics) ObserveInstantiation(source string, result string) {
	if metrics == nil {
		return
	}
	metrics.instantiationsTotal.WithLabelValues(source, result).Inc()
}

func (metrics *WidgetMetrics) ObserveArtifactSize(source string, size int) {
	if metrics == nil {
		return
	}
	metrics.artifactBytes.WithLabelValues(source).Observe(float64(size))
}

// MetricsHandler serves the gatherer in the Prometheus exposition format.
func MetricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
