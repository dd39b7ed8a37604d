package domain

import (
	"strings"
	"time"
)

// Identificadores canônicos dos provedores de dados
const (
	SourceGoogleAds       = "google_ads"
	SourceMetaAds         = "meta_ads"
	SourceGoogleAnalytics = "google_analytics"
)

// Tags de procedência dos dados de cada provedor
const (
	DataSourceGoogleAdsAPI = "google_ads_api"
	DataSourceMetaAdsAPI   = "meta_marketing_api"
	DataSourceAnalyticsAPI = "google_analytics_api"
	DataSourceSimulated    = "simulated"
)

// RawPayload é o payload bruto retornado por um provedor, antes da
// normalização. A validação acontece apenas na fronteira do normalizador:
// campos ausentes viram zero, nunca erro.
type RawPayload map[string]any

// DailyMetric representa as métricas de um dia do histórico de um provedor
type DailyMetric struct {
	Date        string  `json:"date"`
	Spend       float64 `json:"spend"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Conversions int64   `json:"conversions"`
	Sessions    int64   `json:"sessions"`
}

// Campaign representa uma campanha de anúncios já normalizada.
// Status preserva o vocabulário nativo do provedor (ENABLED, ACTIVE,
// PAUSED, ...) para exibição.
type Campaign struct {
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Conversions int64   `json:"conversions"`
	CTR         float64 `json:"ctr"`
	Status      string  `json:"status"`
}

// IsRunning indica se a campanha está ativa. ENABLED e ACTIVE são
// equivalentes para essa decisão.
func (c Campaign) IsRunning() bool {
	switch strings.ToUpper(c.Status) {
	case "ENABLED", "ACTIVE":
		return true
	}
	return false
}

// SourceTotals agrega os totais de um provedor no período consultado
type SourceTotals struct {
	Spend          float64 `json:"spend"`
	Revenue        float64 `json:"revenue"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	Sessions       int64   `json:"sessions"`
	BounceRate     float64 `json:"bounce_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// SourceMetrics é o registro canônico de um provedor após a normalização
type SourceMetrics struct {
	Totals         SourceTotals  `json:"totals"`
	HistoricalData []DailyMetric `json:"historical_data"`
	Campaigns      []Campaign    `json:"campaigns"`
	DataSource     string        `json:"data_source"`
}

// Simulated indica se as métricas vieram de um fallback simulado
// em vez de uma chamada real ao provedor.
func (s *SourceMetrics) Simulated() bool {
	return s.DataSource == DataSourceSimulated
}

// KeyMetrics é o mapeamento fixo de métricas derivadas calculado uma única
// vez na agregação. Contém todos os campos necessários às projeções de
// qualquer papel.
type KeyMetrics struct {
	TotalAdSpend      float64 `json:"total_ad_spend"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalImpressions  int64   `json:"total_impressions"`
	TotalClicks       int64   `json:"total_clicks"`
	TotalSessions     int64   `json:"total_sessions"`
	ROAS              float64 `json:"roas"`
	CTR               float64 `json:"ctr"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	ConversionValue   float64 `json:"conversion_value"`
	BounceRate        float64 `json:"bounce_rate"`
	ConversionRate    float64 `json:"conversion_rate"`
}

// KpiSnapshot é a unidade de cache: um resultado de agregação completo e
// imutável, produzido em um instante no tempo. Nunca é mutado depois de
// criado; um novo refresh produz um novo snapshot.
type KpiSnapshot struct {
	ID          string                    `json:"id"`
	KeyMetrics  KeyMetrics                `json:"key_metrics"`
	PerSource   map[string]*SourceMetrics `json:"per_source"`
	CreatedAt   time.Time                 `json:"created_at"`
	LastUpdated string                    `json:"last_updated"`
}

// Age retorna a idade do snapshot no instante informado
func (s *KpiSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// CacheStats expõe as estatísticas do cache de snapshots
type CacheStats struct {
	HasData    bool    `json:"has_data"`
	AgeSeconds float64 `json:"age_seconds"`
	TTLSeconds float64 `json:"ttl_seconds"`
	HitCount   int64   `json:"hit_count"`
	MissCount  int64   `json:"miss_count"`
}
