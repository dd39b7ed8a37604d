package projecting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

func sampleSnapshot() *domain.KpiSnapshot {
	return &domain.KpiSnapshot{
		ID: "snap1",
		KeyMetrics: domain.KeyMetrics{
			TotalAdSpend:      100.0,
			TotalRevenue:      250.0,
			TotalImpressions:  10000,
			TotalClicks:       500,
			TotalSessions:     2000,
			ROAS:              2.5,
			CTR:               5.0,
			CostPerConversion: 2.0,
			ConversionValue:   5.0,
			BounceRate:        45.2,
			ConversionRate:    10.0,
		},
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		roleID   int
		expected map[string]any
	}{
		{
			name:   "Financeiro vê custo e receita",
			roleID: domain.RoleFinance,
			expected: map[string]any{
				"total_ad_spend":      100.0,
				"total_revenue":       250.0,
				"roas":                2.5,
				"cost_per_conversion": 2.0,
				"conversion_value":    5.0,
			},
		},
		{
			name:   "Marketing vê engajamento e performance",
			roleID: domain.RoleMarketing,
			expected: map[string]any{
				"total_impressions": int64(10000),
				"total_clicks":      int64(500),
				"ctr":               5.0,
				"total_sessions":    int64(2000),
				"bounce_rate":       45.2,
				"conversion_rate":   10.0,
			},
		},
		{
			name:   "Admin vê a visão consolidada",
			roleID: domain.RoleAdmin,
			expected: map[string]any{
				"total_ad_spend":    100.0,
				"total_revenue":     250.0,
				"total_impressions": int64(10000),
				"total_clicks":      int64(500),
				"total_sessions":    int64(2000),
				"conversion_rate":   10.0,
				"roas":              2.5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Project(sampleSnapshot(), tt.roleID))
		})
	}
}

func TestProject_UnknownRoleFallsBackToAdminView(t *testing.T) {
	projection := Project(sampleSnapshot(), 99)

	assert.Contains(t, projection, "total_ad_spend")
	assert.Contains(t, projection, "roas")
	assert.NotContains(t, projection, "cost_per_conversion")
}

func TestProject_NilSnapshot(t *testing.T) {
	assert.Empty(t, Project(nil, domain.RoleAdmin))
}
