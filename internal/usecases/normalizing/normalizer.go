package normalizing

import (
	"sort"
	"strconv"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// Normalize converte o payload bruto de um provedor no registro canônico
// SourceMetrics. A normalização nunca falha: campo desconhecido ou ausente
// vira zero (ou sequência vazia), e o vocabulário de status das campanhas é
// preservado como veio do provedor. A falha dura de um provedor é
// representada mais acima, pela ausência do SourceMetrics daquele provedor,
// nunca como erro de normalização.
func Normalize(providerID string, payload domain.RawPayload) *domain.SourceMetrics {
	if payload == nil {
		payload = domain.RawPayload{}
	}

	metrics := &domain.SourceMetrics{
		DataSource:     asString(payload["data_source"]),
		HistoricalData: normalizeHistorical(payload["historical_data"]),
		Campaigns:      normalizeCampaigns(payload["campaigns"]),
	}

	switch providerID {
	case domain.SourceMetaAds:
		// O Meta aninha os totais em summary_metrics
		summary := asMap(payload["summary_metrics"])
		metrics.Totals = domain.SourceTotals{
			Spend:       asFloat(summary["total_spend"]),
			Impressions: asInt(summary["total_impressions"]),
			Clicks:      asInt(summary["total_clicks"]),
			Conversions: asInt(summary["total_conversions"]),
		}
	case domain.SourceGoogleAnalytics:
		metrics.Totals = domain.SourceTotals{
			Sessions:       asInt(payload["total_sessions"]),
			Revenue:        asFloat(payload["revenue"]),
			BounceRate:     asFloat(payload["bounce_rate"]),
			ConversionRate: asFloat(payload["conversion_rate"]),
		}
	default:
		// Google Ads e demais provedores de mídia usam campos planos
		metrics.Totals = domain.SourceTotals{
			Spend:          asFloat(payload["total_spend"]),
			Impressions:    asInt(payload["total_impressions"]),
			Clicks:         asInt(payload["total_clicks"]),
			Conversions:    asInt(payload["total_conversions"]),
			ConversionRate: asFloat(payload["conversion_rate"]),
		}
	}

	return metrics
}

func normalizeHistorical(value any) []domain.DailyMetric {
	entries := asSlice(value)
	historical := make([]domain.DailyMetric, 0, len(entries))

	for _, entry := range entries {
		row := asMap(entry)
		if row == nil {
			continue
		}

		historical = append(historical, domain.DailyMetric{
			Date:        asString(row["date"]),
			Spend:       asFloat(row["spend"]),
			Clicks:      asInt(row["clicks"]),
			Impressions: asInt(row["impressions"]),
			Conversions: asInt(row["conversions"]),
			Sessions:    asInt(row["sessions"]),
		})
	}

	// A série histórica é sempre servida em ordem crescente de data
	sort.SliceStable(historical, func(i, j int) bool {
		return historical[i].Date < historical[j].Date
	})

	return historical
}

func normalizeCampaigns(value any) []domain.Campaign {
	entries := asSlice(value)
	campaigns := make([]domain.Campaign, 0, len(entries))

	for _, entry := range entries {
		row := asMap(entry)
		if row == nil {
			continue
		}

		cost := asFloat(row["cost"])
		if cost == 0 {
			// O Google Ads reporta o custo da campanha como "spend"
			cost = asFloat(row["spend"])
		}

		status := asString(row["status"])
		if status == "" {
			status = "UNKNOWN"
		}

		campaigns = append(campaigns, domain.Campaign{
			Name:        asString(row["name"]),
			Cost:        cost,
			Clicks:      asInt(row["clicks"]),
			Impressions: asInt(row["impressions"]),
			Conversions: asInt(row["conversions"]),
			CTR:         asFloat(row["ctr"]),
			Status:      status,
		})
	}

	return campaigns
}

// Coerções tolerantes: payloads decodificados de JSON carregam float64,
// mas fontes simuladas e testes podem carregar int ou string.

func asMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case domain.RawPayload:
		return v
	}
	return nil
}

func asSlice(value any) []any {
	if v, ok := value.([]any); ok {
		return v
	}
	return nil
}

func asString(value any) string {
	if v, ok := value.(string); ok {
		return v
	}
	return ""
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return 0
}

func asInt(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
