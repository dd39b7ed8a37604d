package aggregating

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/oneview/kpi-dashboard-api/infrastructure/repository"
	"github.com/oneview/kpi-dashboard-api/internal/cache"
	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
	"github.com/oneview/kpi-dashboard-api/internal/metrics"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/normalizing"
	"github.com/oneview/kpi-dashboard-api/pkg/utils"
)

// ErrAllSourcesUnavailable indica que todos os provedores falharam e não
// existe snapshot anterior (nem expirado) para servir como fallback
var ErrAllSourcesUnavailable = errors.New("nenhum provedor de dados disponível e nenhum snapshot em cache")

// Só existe um snapshot por processo, então o single-flight usa uma chave
// fixa: qualquer caller que chegue durante um refresh em andamento espera
// e reaproveita o resultado dele.
const snapshotKey = "kpi_snapshot"

// Service implementa Aggregator: consulta o cache, coordena o refresh com
// garantia de no máximo um em andamento, faz o fan-out para os provedores
// com isolamento de falhas e publica o snapshot de forma atômica.
type Service struct {
	cfg         *config.Config
	cache       *cache.SnapshotCache
	providers   []Provider
	metrics     *metrics.Metrics
	historyRepo repository.KpiHistoryRepository

	group singleflight.Group
	now   func() time.Time
}

// NewService cria o agregador sem persistência de histórico
func NewService(
	cfg *config.Config,
	snapshotCache *cache.SnapshotCache,
	providers []Provider,
	m *metrics.Metrics,
) *Service {
	return &Service{
		cfg:       cfg,
		cache:     snapshotCache,
		providers: providers,
		metrics:   m,
		now:       time.Now,
	}
}

// WithHistory habilita a gravação best-effort do histórico de snapshots
func (s *Service) WithHistory(historyRepo repository.KpiHistoryRepository) *Service {
	s.historyRepo = historyRepo
	return s
}

// WithClock substitui a fonte de tempo do serviço. Útil apenas em testes.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) GetSnapshot(ctx context.Context, forceRefresh bool) (*domain.KpiSnapshot, error) {
	if !forceRefresh {
		if snapshot := s.cache.Get(); snapshot != nil {
			s.cache.RecordHit()
			s.metrics.CacheHits.Inc()
			return snapshot, nil
		}
	}

	s.cache.RecordMiss()
	s.metrics.CacheMisses.Inc()

	// O refresh roda desacoplado do contexto da requisição que o liderou:
	// vários callers compartilham o mesmo voo e o cancelamento de um deles
	// não pode derrubar as buscas dos demais. O timeout por provedor limita
	// a duração do ciclo.
	refreshCtx := context.WithoutCancel(ctx)

	result, err, _ := s.group.Do(snapshotKey, func() (any, error) {
		return s.refresh(refreshCtx, forceRefresh)
	})
	if err != nil {
		return nil, err
	}

	return result.(*domain.KpiSnapshot), nil
}

func (s *Service) DataSourceStatus(ctx context.Context) (map[string]string, error) {
	snapshot, err := s.GetSnapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	status := make(map[string]string, len(snapshot.PerSource))
	for providerID, source := range snapshot.PerSource {
		status[providerID] = source.DataSource
	}

	return status, nil
}

func (s *Service) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}

func (s *Service) ClearCache() {
	s.cache.Clear()
	logrus.Info("Cache de snapshots limpo")
}

// refresh executa um ciclo completo de agregação. Roda sempre sob o
// single-flight: no máximo uma execução por vez.
func (s *Service) refresh(ctx context.Context, forceRefresh bool) (*domain.KpiSnapshot, error) {
	// Um caller não-forçado pode ter esperado por um refresh que acabou de
	// publicar; nesse caso o resultado fresco é reaproveitado sem nova
	// rodada de chamadas aos provedores.
	if !forceRefresh {
		if snapshot := s.cache.Get(); snapshot != nil {
			return snapshot, nil
		}
	}

	perSource := s.fetchAll(ctx)

	if len(perSource) == 0 {
		s.metrics.SnapshotRefreshes.WithLabelValues("failure").Inc()

		if stale := s.cache.GetStale(); stale != nil {
			logrus.Warn("Todos os provedores falharam; servindo snapshot expirado como fallback")
			return stale, nil
		}

		return nil, ErrAllSourcesUnavailable
	}

	snapshot := s.buildSnapshot(perSource)

	// Publicação tudo-ou-nada: o snapshot só entra no cache com todas as
	// métricas derivadas já calculadas
	s.cache.Put(snapshot)
	s.metrics.SnapshotRefreshes.WithLabelValues("success").Inc()

	if s.historyRepo != nil {
		go func(snap *domain.KpiSnapshot) {
			if err := s.historyRepo.SaveSnapshot(snap); err != nil {
				logrus.WithError(err).Warn("Erro ao gravar histórico de snapshot")
			}
		}(snapshot)
	}

	logrus.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"sources":     len(perSource),
	}).Info("Novo snapshot de KPIs publicado")

	return snapshot, nil
}

// fetchAll dispara todos os provedores em paralelo, cada um com seu próprio
// timeout, e faz o join incondicional. A falha de um provedor não aborta os
// demais: ele simplesmente fica fora do mapa resultante.
func (s *Service) fetchAll(ctx context.Context) map[string]*domain.SourceMetrics {
	var (
		mu        sync.Mutex
		perSource = make(map[string]*domain.SourceMetrics, len(s.providers))
	)

	wg := sync.WaitGroup{}
	wg.Add(len(s.providers))

	for _, provider := range s.providers {
		go func(p Provider) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.Providers.Timeout())
			defer cancel()

			start := time.Now()
			payload, err := p.Fetch(fetchCtx)
			elapsed := time.Since(start)

			if err != nil {
				s.metrics.ObserveFetch(p.ID(), metrics.FetchResultError, elapsed)
				logrus.WithFields(logrus.Fields{
					"provider": p.ID(),
					"error":    err.Error(),
				}).Error("kpi: provider fetch failed")
				return
			}

			source := normalizing.Normalize(p.ID(), payload)

			result := metrics.FetchResultLive
			if source.Simulated() {
				result = metrics.FetchResultSimulated
			}
			s.metrics.ObserveFetch(p.ID(), result, elapsed)

			mu.Lock()
			perSource[p.ID()] = source
			mu.Unlock()
		}(provider)
	}

	wg.Wait()

	return perSource
}

// buildSnapshot combina as métricas normalizadas de todos os provedores em
// um snapshot imutável, calculando as razões derivadas uma única vez
func (s *Service) buildSnapshot(perSource map[string]*domain.SourceMetrics) *domain.KpiSnapshot {
	var (
		totalSpend       float64
		totalRevenue     float64
		totalImpressions int64
		totalClicks      int64
		totalConversions int64
		totalSessions    int64
		bounceRate       float64
	)

	for _, source := range perSource {
		totalSpend += source.Totals.Spend
		totalRevenue += source.Totals.Revenue
		totalImpressions += source.Totals.Impressions
		totalClicks += source.Totals.Clicks
		totalConversions += source.Totals.Conversions
		totalSessions += source.Totals.Sessions
	}

	// A taxa de rejeição vem direto do Analytics, não é derivada de
	// métricas de mídia
	if analyticsSource, ok := perSource[domain.SourceGoogleAnalytics]; ok {
		bounceRate = analyticsSource.Totals.BounceRate
	}

	keyMetrics := domain.KeyMetrics{
		TotalAdSpend:     utils.RoundWithTwoDecimalPlace(totalSpend),
		TotalRevenue:     utils.RoundWithTwoDecimalPlace(totalRevenue),
		TotalImpressions: totalImpressions,
		TotalClicks:      totalClicks,
		TotalSessions:    totalSessions,
		BounceRate:       bounceRate,
	}

	// Razões derivadas: denominador zero resolve para 0, nunca para
	// infinito ou erro
	if totalImpressions > 0 {
		keyMetrics.CTR = utils.RoundWithTwoDecimalPlace(float64(totalClicks) / float64(totalImpressions) * 100)
	}
	if totalSpend > 0 {
		keyMetrics.ROAS = utils.RoundWithTwoDecimalPlace(totalRevenue / totalSpend)
	}
	if totalConversions > 0 {
		keyMetrics.CostPerConversion = utils.RoundWithTwoDecimalPlace(totalSpend / float64(totalConversions))
		keyMetrics.ConversionValue = utils.RoundWithTwoDecimalPlace(totalRevenue / float64(totalConversions))
	}
	if totalClicks > 0 {
		keyMetrics.ConversionRate = utils.RoundWithTwoDecimalPlace(float64(totalConversions) / float64(totalClicks) * 100)
	}

	snapshotID, err := utils.GenerateID()
	if err != nil {
		logrus.WithError(err).Warn("Erro ao gerar o ID do snapshot")
	}

	createdAt := s.now()

	return &domain.KpiSnapshot{
		ID:          snapshotID,
		KeyMetrics:  keyMetrics,
		PerSource:   perSource,
		CreatedAt:   createdAt,
		LastUpdated: createdAt.Format(time.RFC3339),
	}
}
