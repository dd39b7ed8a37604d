package aggregating

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneview/kpi-dashboard-api/internal/cache"
	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
	"github.com/oneview/kpi-dashboard-api/internal/metrics"
)

// fakeProvider conta as chamadas a Fetch, o que permite verificar quantas
// rodadas de agregação realmente aconteceram
type fakeProvider struct {
	id      string
	payload domain.RawPayload
	err     error
	delay   time.Duration
	calls   atomic.Int64
}

func (p *fakeProvider) ID() string {
	return p.id
}

func (p *fakeProvider) Fetch(ctx context.Context) (domain.RawPayload, error) {
	p.calls.Add(1)

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if p.err != nil {
		return nil, p.err
	}

	return p.payload, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Cache:     config.Cache{TTLSeconds: 300},
		Providers: config.Providers{TimeoutSeconds: 5, SimulationFallback: false},
	}
}

func googleAdsPayload() domain.RawPayload {
	return domain.RawPayload{
		"data_source":       domain.DataSourceGoogleAdsAPI,
		"total_spend":       100.0,
		"total_clicks":      500,
		"total_impressions": 10000,
		"total_conversions": 50,
	}
}

func analyticsPayload() domain.RawPayload {
	return domain.RawPayload{
		"data_source":     domain.DataSourceAnalyticsAPI,
		"total_sessions":  2000,
		"revenue":         250.0,
		"bounce_rate":     45.2,
		"conversion_rate": 3.1,
	}
}

func newTestService(providers []Provider) *Service {
	return NewService(
		testConfig(),
		cache.New(300*time.Second),
		providers,
		metrics.New(prometheus.NewRegistry()),
	)
}

func TestGetSnapshot_DerivedMetrics(t *testing.T) {
	google := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}
	analytics := &fakeProvider{id: domain.SourceGoogleAnalytics, payload: analyticsPayload()}

	service := newTestService([]Provider{google, analytics})

	snapshot, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	km := snapshot.KeyMetrics
	assert.Equal(t, 100.0, km.TotalAdSpend)
	assert.Equal(t, 250.0, km.TotalRevenue)
	assert.Equal(t, int64(10000), km.TotalImpressions)
	assert.Equal(t, int64(500), km.TotalClicks)
	assert.Equal(t, int64(2000), km.TotalSessions)
	assert.Equal(t, 2.5, km.ROAS)                // 250 / 100
	assert.Equal(t, 5.0, km.CTR)                 // 500 / 10000 * 100
	assert.Equal(t, 2.0, km.CostPerConversion)   // 100 / 50
	assert.Equal(t, 5.0, km.ConversionValue)     // 250 / 50
	assert.Equal(t, 10.0, km.ConversionRate)     // 50 / 500 * 100
	assert.Equal(t, 45.2, km.BounceRate)

	assert.NotEmpty(t, snapshot.ID)
	assert.Len(t, snapshot.PerSource, 2)
}

func TestGetSnapshot_ZeroDenominators(t *testing.T) {
	empty := &fakeProvider{
		id: domain.SourceGoogleAds,
		payload: domain.RawPayload{
			"data_source": domain.DataSourceGoogleAdsAPI,
		},
	}

	service := newTestService([]Provider{empty})

	snapshot, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)

	km := snapshot.KeyMetrics
	assert.Zero(t, km.ROAS)
	assert.Zero(t, km.CTR)
	assert.Zero(t, km.CostPerConversion)
	assert.Zero(t, km.ConversionValue)
	assert.Zero(t, km.ConversionRate)
}

func TestGetSnapshot_CacheHit(t *testing.T) {
	provider := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}
	service := newTestService([]Provider{provider})

	first, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)

	second, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), provider.calls.Load())

	stats := service.CacheStats()
	assert.True(t, stats.HasData)
	assert.Equal(t, int64(1), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
}

func TestGetSnapshot_ForceRefresh(t *testing.T) {
	provider := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}
	service := newTestService([]Provider{provider})

	first, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)

	second, err := service.GetSnapshot(context.Background(), true)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(2), provider.calls.Load())
}

func TestGetSnapshot_ConcurrentCallersShareOneRefresh(t *testing.T) {
	provider := &fakeProvider{
		id:      domain.SourceGoogleAds,
		payload: googleAdsPayload(),
		delay:   50 * time.Millisecond,
	}
	service := newTestService([]Provider{provider})

	const callers = 10

	var wg sync.WaitGroup
	snapshots := make([]*domain.KpiSnapshot, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			snapshots[i], errs[i] = service.GetSnapshot(context.Background(), false)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, snapshots[i])
		assert.Equal(t, snapshots[0].ID, snapshots[i].ID)
	}

	assert.Equal(t, int64(1), provider.calls.Load())
}

func TestGetSnapshot_ConcurrentForcedCallersShareOneRefresh(t *testing.T) {
	provider := &fakeProvider{
		id:      domain.SourceGoogleAds,
		payload: googleAdsPayload(),
		delay:   50 * time.Millisecond,
	}
	service := newTestService([]Provider{provider})

	const callers = 10

	var wg sync.WaitGroup
	snapshots := make([]*domain.KpiSnapshot, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			snapshots[i], errs[i] = service.GetSnapshot(context.Background(), true)
		}(i)
	}
	wg.Wait()

	// Mesmo forçados, callers concorrentes compartilham uma única rodada
	// de chamadas aos provedores
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, snapshots[i])
		assert.Equal(t, snapshots[0].ID, snapshots[i].ID)
	}

	assert.Equal(t, int64(1), provider.calls.Load())
}

func TestGetSnapshot_LeaderCancellationDoesNotAbortSharedRefresh(t *testing.T) {
	provider := &fakeProvider{
		id:      domain.SourceGoogleAds,
		payload: googleAdsPayload(),
		delay:   200 * time.Millisecond,
	}
	service := newTestService([]Provider{provider})

	leaderCtx, cancelLeader := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	var leaderSnapshot, joinerSnapshot *domain.KpiSnapshot
	var leaderErr, joinerErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		leaderSnapshot, leaderErr = service.GetSnapshot(leaderCtx, true)
	}()

	// O joiner entra no voo já em andamento com um contexto próprio e vivo
	time.Sleep(50 * time.Millisecond)
	wg.Add(1)
	go func() {
		defer wg.Done()
		joinerSnapshot, joinerErr = service.GetSnapshot(context.Background(), false)
	}()

	// O cancelamento do líder no meio do refresh não derruba as buscas
	// compartilhadas pelos demais callers
	time.Sleep(50 * time.Millisecond)
	cancelLeader()

	wg.Wait()

	require.NoError(t, joinerErr)
	require.NotNil(t, joinerSnapshot)
	require.NoError(t, leaderErr)
	require.NotNil(t, leaderSnapshot)
	assert.Equal(t, leaderSnapshot.ID, joinerSnapshot.ID)
	assert.Equal(t, int64(1), provider.calls.Load())
}

func TestGetSnapshot_ExpiredCacheTriggersRefresh(t *testing.T) {
	provider := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshotCache := cache.New(300 * time.Second).WithClock(func() time.Time { return now })

	service := NewService(
		testConfig(),
		snapshotCache,
		[]Provider{provider},
		metrics.New(prometheus.NewRegistry()),
	).WithClock(func() time.Time { return now })

	_, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), provider.calls.Load())

	// Exatamente no limite do TTL o snapshot já conta como expirado
	now = now.Add(300 * time.Second)

	_, err = service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), provider.calls.Load())
}

func TestGetSnapshot_PartialProviderFailure(t *testing.T) {
	google := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}
	broken := &fakeProvider{id: domain.SourceMetaAds, err: errors.New("timeout")}
	analytics := &fakeProvider{id: domain.SourceGoogleAnalytics, payload: analyticsPayload()}

	service := newTestService([]Provider{google, broken, analytics})

	snapshot, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)

	assert.Len(t, snapshot.PerSource, 2)
	assert.Contains(t, snapshot.PerSource, domain.SourceGoogleAds)
	assert.Contains(t, snapshot.PerSource, domain.SourceGoogleAnalytics)
	assert.NotContains(t, snapshot.PerSource, domain.SourceMetaAds)

	// Os totais refletem apenas as fontes que responderam
	assert.Equal(t, 100.0, snapshot.KeyMetrics.TotalAdSpend)
	assert.Equal(t, 250.0, snapshot.KeyMetrics.TotalRevenue)
}

func TestGetSnapshot_AllProvidersFailWithoutFallback(t *testing.T) {
	broken := &fakeProvider{id: domain.SourceGoogleAds, err: errors.New("unreachable")}
	service := newTestService([]Provider{broken})

	snapshot, err := service.GetSnapshot(context.Background(), false)
	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrAllSourcesUnavailable)
}

func TestGetSnapshot_AllProvidersFailServesStaleSnapshot(t *testing.T) {
	provider := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshotCache := cache.New(300 * time.Second).WithClock(func() time.Time { return now })

	service := NewService(
		testConfig(),
		snapshotCache,
		[]Provider{provider},
		metrics.New(prometheus.NewRegistry()),
	).WithClock(func() time.Time { return now })

	first, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)

	// Snapshot expira e o provedor passa a falhar
	now = now.Add(10 * time.Minute)
	provider.err = errors.New("unreachable")

	stale, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stale.ID)
}

func TestDataSourceStatus(t *testing.T) {
	google := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}
	simulated := &fakeProvider{
		id: domain.SourceMetaAds,
		payload: domain.RawPayload{
			"data_source": domain.DataSourceSimulated,
			"summary_metrics": map[string]any{
				"total_spend": 10.0,
			},
		},
	}

	service := newTestService([]Provider{google, simulated})

	status, err := service.DataSourceStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DataSourceGoogleAdsAPI, status[domain.SourceGoogleAds])
	assert.Equal(t, domain.DataSourceSimulated, status[domain.SourceMetaAds])
}

func TestClearCache(t *testing.T) {
	provider := &fakeProvider{id: domain.SourceGoogleAds, payload: googleAdsPayload()}
	service := newTestService([]Provider{provider})

	_, err := service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)
	require.True(t, service.CacheStats().HasData)

	service.ClearCache()
	assert.False(t, service.CacheStats().HasData)

	_, err = service.GetSnapshot(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), provider.calls.Load())
}
