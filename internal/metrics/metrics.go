package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os contadores Prometheus do pipeline de agregação de KPIs
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	SnapshotRefreshes *prometheus.CounterVec

	ProviderFetches      *prometheus.CounterVec
	ProviderFetchLatency *prometheus.HistogramVec
}

// Resultados possíveis de uma chamada a provedor
const (
	FetchResultLive      = "live"
	FetchResultSimulated = "simulated"
	FetchResultError     = "error"
)

// New registra e retorna as métricas no registrador informado. Passar um
// registrador próprio permite instâncias independentes em testes.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kpi",
			Name:      "cache_hits_total",
			Help:      "Total de requisições servidas do cache de snapshots.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kpi",
			Name:      "cache_misses_total",
			Help:      "Total de requisições que exigiram refresh dos provedores.",
		}),
		SnapshotRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kpi",
			Name:      "snapshot_refreshes_total",
			Help:      "Total de ciclos de refresh do snapshot, por resultado.",
		}, []string{"result"}),
		ProviderFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kpi",
			Name:      "provider_fetches_total",
			Help:      "Total de chamadas a provedores externos, por provedor e resultado.",
		}, []string{"provider", "result"}),
		ProviderFetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kpi",
			Name:      "provider_fetch_duration_seconds",
			Help:      "Duração das chamadas a provedores externos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

// ObserveFetch registra o resultado e a duração de uma chamada a provedor
func (m *Metrics) ObserveFetch(provider, result string, duration time.Duration) {
	m.ProviderFetches.WithLabelValues(provider, result).Inc()
	m.ProviderFetchLatency.WithLabelValues(provider).Observe(duration.Seconds())
}
