package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider and pipeline Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "extraction_requests_total",
			Help:      "Total number of structured extraction requests",
		},
		[]string{"model", "schema", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Name:      "extraction_request_duration_seconds",
			Help:      "Structured extraction request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model", "schema"},
	)

	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"model", "type"},
	)

	NoteCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "note_cache_total",
			Help:      "Note summary cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	// CitationsDroppedTotal counts model-cited document ids absent from the
	// retrieved candidate set. The drop itself stays silent toward the caller.
	CitationsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Name:      "citations_dropped_total",
			Help:      "Model-cited document ids dropped during reconciliation",
		},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers provider and pipeline metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(TokensTotal)
	prometheus.MustRegister(NoteCacheTotal)
	prometheus.MustRegister(CitationsDroppedTotal)
	llmMetricsRegistered = true
}
