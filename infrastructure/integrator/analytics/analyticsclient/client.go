package analyticsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// ErrNotConfigured indica que o cliente não tem credenciais para chamar a
// Data API
var ErrNotConfigured = errors.New("google analytics: credenciais não configuradas")

type Client interface {
	RunReport(ctx context.Context) (domain.RawPayload, error)
}

type AnalyticsClient struct {
	httpClient *http.Client
	config     *config.Config
}

func NewClient(cfg *config.Config) Client {
	return &AnalyticsClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
	}
}

// RunReport executa o relatório padrão de sessões/receita dos últimos 30
// dias na Data API
func (c *AnalyticsClient) RunReport(ctx context.Context) (domain.RawPayload, error) {
	cfg := c.config.GoogleAnalytics
	if cfg.APIKey == "" || cfg.PropertyID == "" {
		return nil, ErrNotConfigured
	}

	endpoint, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao analisar a URL base: %w", err)
	}
	endpoint.Path = path.Join(endpoint.Path, "properties", cfg.PropertyID+":runReport")

	body := map[string]any{
		"dateRanges": []map[string]string{{"startDate": "30daysAgo", "endDate": "today"}},
		"dimensions": []map[string]string{{"name": "date"}},
		"metrics": []map[string]string{
			{"name": "sessions"},
			{"name": "bounceRate"},
			{"name": "totalRevenue"},
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("erro ao codificar o corpo da requisição: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a requisição: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requisição falhou com status: %s", resp.Status)
	}

	var payload domain.RawPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("erro ao decodificar a resposta: %w", err)
	}

	if payload == nil {
		payload = domain.RawPayload{}
	}
	payload["data_source"] = domain.DataSourceAnalyticsAPI

	return payload, nil
}
