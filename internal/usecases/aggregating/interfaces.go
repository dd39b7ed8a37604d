package aggregating

import (
	"context"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

// Provider é a fronteira com um provedor externo de métricas. O agregador
// não sabe se a implementação fala com uma API real ou devolve dados
// simulados; só exige que o payload carregue a tag data_source.
type Provider interface {
	ID() string
	Fetch(ctx context.Context) (domain.RawPayload, error)
}

// Aggregator monta, cacheia e serve snapshots de KPI combinados
type Aggregator interface {
	// GetSnapshot retorna o snapshot corrente. Com forceRefresh o cache de
	// frescor é ignorado, mas um refresh já em andamento é reaproveitado em
	// vez de disparar uma segunda rodada de chamadas aos provedores.
	GetSnapshot(ctx context.Context, forceRefresh bool) (*domain.KpiSnapshot, error)

	// DataSourceStatus informa a procedência (live ou simulada) dos dados
	// de cada provedor no snapshot corrente
	DataSourceStatus(ctx context.Context) (map[string]string, error)

	CacheStats() domain.CacheStats
	ClearCache()
}
