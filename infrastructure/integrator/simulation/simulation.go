package simulation

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// Generator produz payloads simulados no mesmo formato bruto dos provedores
// reais. É o fallback explícito quando um provedor está indisponível ou não
// configurado: o payload sai com data_source = "simulated", então a
// procedência fica visível até a camada de apresentação.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New cria um gerador. Com seed 0 a semente é derivada do relógio; uma
// semente fixa produz dados reprodutíveis em testes.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// WithClock substitui a fonte de tempo do gerador. Útil apenas em testes.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

var adCampaignNames = []string{
	"Summer Sale Campaign",
	"Holiday Promotion",
	"Brand Awareness Drive",
	"Product Launch Campaign",
	"Retargeting Campaign",
}

// GoogleAds gera um payload simulado no formato plano do Google Ads
func (g *Generator) GoogleAds() domain.RawPayload {
	g.mu.Lock()
	defer g.mu.Unlock()

	campaigns := make([]any, 0, len(adCampaignNames))
	for i, name := range adCampaignNames {
		status := "ENABLED"
		if i == len(adCampaignNames)-1 {
			status = "PAUSED"
		}

		campaigns = append(campaigns, map[string]any{
			"name":        name,
			"spend":       g.roundedFloat(2000, 10000),
			"impressions": float64(g.intBetween(20000, 100000)),
			"clicks":      float64(g.intBetween(1000, 5000)),
			"conversions": float64(g.intBetween(40, 200)),
			"ctr":         g.roundedFloat(1.5, 9.0),
			"status":      status,
		})
	}

	return domain.RawPayload{
		"data_source":       domain.DataSourceSimulated,
		"total_spend":       g.roundedFloat(10000, 50000),
		"total_impressions": float64(g.intBetween(100000, 500000)),
		"total_clicks":      float64(g.intBetween(5000, 25000)),
		"total_conversions": float64(g.intBetween(200, 1000)),
		"conversion_rate":   g.roundedFloat(3.0, 12.0),
		"campaigns":         campaigns,
		"historical_data":   g.adHistory(300, 1500, 150, 800),
	}
}

// MetaAds gera um payload simulado com os totais aninhados em
// summary_metrics, como a Marketing API responde
func (g *Generator) MetaAds() domain.RawPayload {
	g.mu.Lock()
	defer g.mu.Unlock()

	return domain.RawPayload{
		"data_source": domain.DataSourceSimulated,
		"summary_metrics": map[string]any{
			"total_impressions": float64(g.intBetween(50000, 150000)),
			"total_clicks":      float64(g.intBetween(2000, 8000)),
			"total_spend":       g.roundedFloat(1000, 5000),
			"total_conversions": float64(g.intBetween(50, 200)),
		},
		"campaigns": []any{
			map[string]any{"name": "Meta Brand Campaign", "status": "ACTIVE"},
			map[string]any{"name": "Meta Retargeting Campaign", "status": "ACTIVE"},
		},
		"historical_data": g.adHistory(50, 200, 50, 300),
	}
}

// GoogleAnalytics gera um payload simulado de sessões e receita
func (g *Generator) GoogleAnalytics() domain.RawPayload {
	g.mu.Lock()
	defer g.mu.Unlock()

	historical := make([]any, 0, 30)
	for i := 29; i >= 0; i-- {
		date := g.now().AddDate(0, 0, -i)
		historical = append(historical, map[string]any{
			"date":     date.Format(time.DateOnly),
			"sessions": float64(g.intBetween(400, 2000)),
		})
	}

	return domain.RawPayload{
		"data_source":     domain.DataSourceSimulated,
		"total_sessions":  float64(g.intBetween(15000, 75000)),
		"revenue":         g.roundedFloat(25000, 100000),
		"bounce_rate":     g.roundedFloat(25.0, 65.0),
		"conversion_rate": g.roundedFloat(2.0, 8.0),
		"historical_data": historical,
	}
}

// ForProvider despacha para o gerador do provedor informado
func (g *Generator) ForProvider(providerID string) (domain.RawPayload, error) {
	switch providerID {
	case domain.SourceGoogleAds:
		return g.GoogleAds(), nil
	case domain.SourceMetaAds:
		return g.MetaAds(), nil
	case domain.SourceGoogleAnalytics:
		return g.GoogleAnalytics(), nil
	}
	return nil, fmt.Errorf("provedor desconhecido para simulação: %s", providerID)
}

// adHistory gera os últimos 30 dias de métricas de mídia em ordem
// cronológica
func (g *Generator) adHistory(minSpend, maxSpend float64, minClicks, maxClicks int) []any {
	historical := make([]any, 0, 30)
	for i := 29; i >= 0; i-- {
		date := g.now().AddDate(0, 0, -i)
		historical = append(historical, map[string]any{
			"date":        date.Format(time.DateOnly),
			"spend":       g.roundedFloat(minSpend, maxSpend),
			"clicks":      float64(g.intBetween(minClicks, maxClicks)),
			"impressions": float64(g.intBetween(2000, 20000)),
			"conversions": float64(g.intBetween(2, 50)),
		})
	}
	return historical
}

func (g *Generator) intBetween(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

func (g *Generator) roundedFloat(min, max float64) float64 {
	value := min + g.rng.Float64()*(max-min)
	return float64(int(value*100)) / 100
}
