package metaadsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// ErrNotConfigured indica que o cliente não tem token para chamar a
// Marketing API
var ErrNotConfigured = errors.New("meta ads: access token não configurado")

type Client interface {
	FetchAccountInsights(ctx context.Context) (domain.RawPayload, error)
}

type MetaClient struct {
	httpClient *http.Client
	config     *config.Config
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
	}
}

// FetchAccountInsights busca os insights agregados da conta de anúncios nos
// últimos 30 dias via Graph API
func (c *MetaClient) FetchAccountInsights(ctx context.Context) (domain.RawPayload, error) {
	cfg := c.config.MetaAds
	if cfg.AccessToken == "" || cfg.AccountID == "" {
		return nil, ErrNotConfigured
	}

	baseURL := fmt.Sprintf("%s/act_%s/insights", cfg.URL, cfg.AccountID)

	params := url.Values{}
	params.Set("fields", "spend,impressions,clicks,actions")
	params.Set("date_preset", "last_30d")
	params.Set("access_token", cfg.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

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
	payload["data_source"] = domain.DataSourceMetaAdsAPI

	return payload, nil
}
