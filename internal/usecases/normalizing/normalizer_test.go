package normalizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

func TestNormalize_GoogleAdsFlatFields(t *testing.T) {
	payload := domain.RawPayload{
		"data_source":       domain.DataSourceGoogleAdsAPI,
		"total_spend":       1234.56,
		"total_impressions": float64(100000),
		"total_clicks":      float64(5000),
		"total_conversions": float64(250),
		"campaigns": []any{
			map[string]any{
				"name":        "Brand Awareness Campaign",
				"spend":       1500.50,
				"clicks":      float64(320),
				"impressions": float64(9000),
				"conversions": float64(21),
				"ctr":         3.5,
				"status":      "ENABLED",
			},
		},
		"historical_data": []any{
			map[string]any{"date": "2025-03-02", "spend": 120.0, "clicks": float64(80)},
			map[string]any{"date": "2025-03-01", "spend": 100.0, "clicks": float64(70)},
		},
	}

	metrics := Normalize(domain.SourceGoogleAds, payload)

	assert.Equal(t, domain.DataSourceGoogleAdsAPI, metrics.DataSource)
	assert.Equal(t, 1234.56, metrics.Totals.Spend)
	assert.Equal(t, int64(100000), metrics.Totals.Impressions)
	assert.Equal(t, int64(5000), metrics.Totals.Clicks)
	assert.Equal(t, int64(250), metrics.Totals.Conversions)

	require.Len(t, metrics.Campaigns, 1)
	campaign := metrics.Campaigns[0]
	assert.Equal(t, "Brand Awareness Campaign", campaign.Name)
	assert.Equal(t, 1500.50, campaign.Cost, "spend deve ser mapeado para cost")
	assert.Equal(t, "ENABLED", campaign.Status)
	assert.True(t, campaign.IsRunning())

	require.Len(t, metrics.HistoricalData, 2)
	assert.Equal(t, "2025-03-01", metrics.HistoricalData[0].Date, "histórico deve sair em ordem crescente")
	assert.Equal(t, "2025-03-02", metrics.HistoricalData[1].Date)
}

func TestNormalize_MetaAdsNestedSummary(t *testing.T) {
	payload := domain.RawPayload{
		"data_source": domain.DataSourceMetaAdsAPI,
		"summary_metrics": map[string]any{
			"total_spend":       2000.0,
			"total_impressions": float64(80000),
			"total_clicks":      float64(3000),
			"total_conversions": float64(120),
		},
		"campaigns": []any{
			map[string]any{"name": "Meta Brand Campaign", "status": "ACTIVE"},
			map[string]any{"name": "Meta Retargeting", "status": "PAUSED"},
		},
	}

	metrics := Normalize(domain.SourceMetaAds, payload)

	assert.Equal(t, 2000.0, metrics.Totals.Spend)
	assert.Equal(t, int64(80000), metrics.Totals.Impressions)

	require.Len(t, metrics.Campaigns, 2)
	assert.True(t, metrics.Campaigns[0].IsRunning(), "ACTIVE equivale a ENABLED")
	assert.False(t, metrics.Campaigns[1].IsRunning())
	assert.Equal(t, "PAUSED", metrics.Campaigns[1].Status, "status nativo deve ser preservado")
}

func TestNormalize_AnalyticsFields(t *testing.T) {
	payload := domain.RawPayload{
		"data_source":     domain.DataSourceAnalyticsAPI,
		"total_sessions":  float64(45000),
		"revenue":         75000.25,
		"bounce_rate":     45.2,
		"conversion_rate": 4.8,
		"historical_data": []any{
			map[string]any{"date": "2025-03-01", "sessions": float64(1500)},
		},
	}

	metrics := Normalize(domain.SourceGoogleAnalytics, payload)

	assert.Equal(t, int64(45000), metrics.Totals.Sessions)
	assert.Equal(t, 75000.25, metrics.Totals.Revenue)
	assert.Equal(t, 45.2, metrics.Totals.BounceRate)
	assert.Equal(t, 4.8, metrics.Totals.ConversionRate)
	require.Len(t, metrics.HistoricalData, 1)
	assert.Equal(t, int64(1500), metrics.HistoricalData[0].Sessions)
}

func TestNormalize_MissingFieldsDefaultToZero(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		payload  domain.RawPayload
	}{
		{name: "payload nulo", provider: domain.SourceGoogleAds, payload: nil},
		{name: "payload vazio", provider: domain.SourceGoogleAds, payload: domain.RawPayload{}},
		{name: "tipos inesperados", provider: domain.SourceGoogleAds, payload: domain.RawPayload{
			"total_spend":     true,
			"total_clicks":    []any{"x"},
			"campaigns":       "not-a-list",
			"historical_data": 42,
		}},
		{name: "summary ausente no meta", provider: domain.SourceMetaAds, payload: domain.RawPayload{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := Normalize(tt.provider, tt.payload)

			require.NotNil(t, metrics, "normalização nunca falha")
			assert.Zero(t, metrics.Totals.Spend)
			assert.Zero(t, metrics.Totals.Clicks)
			assert.Zero(t, metrics.Totals.Impressions)
			assert.Empty(t, metrics.Campaigns)
			assert.Empty(t, metrics.HistoricalData)
		})
	}
}

func TestNormalize_CampaignWithoutStatusIsUnknown(t *testing.T) {
	payload := domain.RawPayload{
		"campaigns": []any{
			map[string]any{"name": "Sem Status"},
		},
	}

	metrics := Normalize(domain.SourceGoogleAds, payload)

	require.Len(t, metrics.Campaigns, 1)
	assert.Equal(t, "UNKNOWN", metrics.Campaigns[0].Status)
	assert.False(t, metrics.Campaigns[0].IsRunning())
}

func TestNormalize_NumericStringsAreCoerced(t *testing.T) {
	payload := domain.RawPayload{
		"total_spend":  "123.45",
		"total_clicks": "67",
	}

	metrics := Normalize(domain.SourceGoogleAds, payload)

	assert.Equal(t, 123.45, metrics.Totals.Spend)
	assert.Equal(t, int64(67), metrics.Totals.Clicks)
}
