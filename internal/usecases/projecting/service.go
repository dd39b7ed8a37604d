package projecting

import (
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// Project seleciona o subconjunto de métricas-chave visível para o papel do
// usuário. O snapshot nunca é alterado: a projeção monta um novo mapa.
//
// Financeiro enxerga custo e receita; marketing enxerga engajamento e
// performance; admin enxerga a visão consolidada.
func Project(snapshot *domain.KpiSnapshot, roleID int) map[string]any {
	if snapshot == nil {
		return map[string]any{}
	}

	km := snapshot.KeyMetrics

	switch roleID {
	case domain.RoleFinance:
		return map[string]any{
			"total_ad_spend":      km.TotalAdSpend,
			"total_revenue":       km.TotalRevenue,
			"roas":                km.ROAS,
			"cost_per_conversion": km.CostPerConversion,
			"conversion_value":    km.ConversionValue,
		}
	case domain.RoleMarketing:
		return map[string]any{
			"total_impressions": km.TotalImpressions,
			"total_clicks":      km.TotalClicks,
			"ctr":               km.CTR,
			"total_sessions":    km.TotalSessions,
			"bounce_rate":       km.BounceRate,
			"conversion_rate":   km.ConversionRate,
		}
	default:
		return map[string]any{
			"total_ad_spend":    km.TotalAdSpend,
			"total_revenue":     km.TotalRevenue,
			"total_impressions": km.TotalImpressions,
			"total_clicks":      km.TotalClicks,
			"total_sessions":    km.TotalSessions,
			"conversion_rate":   km.ConversionRate,
			"roas":              km.ROAS,
		}
	}
}
