package googleadsclient

import (
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
// API real
var ErrNotConfigured = errors.New("google ads: credenciais não configuradas")

type Client interface {
	FetchCampaignMetrics(ctx context.Context) (domain.RawPayload, error)
}

type GoogleAdsClient struct {
	httpClient *http.Client
	config     *config.Config
}

func NewClient(cfg *config.Config) Client {
	return &GoogleAdsClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
	}
}

// FetchCampaignMetrics busca as métricas agregadas de campanhas dos últimos
// 30 dias. O payload volta bruto; a normalização acontece no usecase.
func (c *GoogleAdsClient) FetchCampaignMetrics(ctx context.Context) (domain.RawPayload, error) {
	cfg := c.config.GoogleAds
	if cfg.APIKey == "" || cfg.CustomerID == "" {
		return nil, ErrNotConfigured
	}

	endpoint, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao analisar a URL base: %w", err)
	}
	endpoint.Path = path.Join(endpoint.Path, "customers", cfg.CustomerID, "campaignMetrics")

	query := endpoint.Query()
	query.Set("date_range", "LAST_30_DAYS")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Accept", "application/json")

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
	payload["data_source"] = domain.DataSourceGoogleAdsAPI

	return payload, nil
}
