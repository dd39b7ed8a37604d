package googleads

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/googleads/googleadsclient"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/simulation"
	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// GoogleAdsIntegrator é o adaptador do Google Ads: tenta a API real e,
// quando ela falha ou não está configurada, cai para o payload simulado se
// o fallback estiver habilitado.
type GoogleAdsIntegrator struct {
	cfg       *config.Config
	Client    googleadsclient.Client
	simulator *simulation.Generator
}

func New(cfg *config.Config, client googleadsclient.Client, simulator *simulation.Generator) *GoogleAdsIntegrator {
	return &GoogleAdsIntegrator{
		cfg:       cfg,
		Client:    client,
		simulator: simulator,
	}
}

func (s *GoogleAdsIntegrator) ID() string {
	return domain.SourceGoogleAds
}

func (s *GoogleAdsIntegrator) Fetch(ctx context.Context) (domain.RawPayload, error) {
	payload, err := s.Client.FetchCampaignMetrics(ctx)
	if err == nil {
		return payload, nil
	}

	if errors.Is(err, googleadsclient.ErrNotConfigured) {
		logrus.Debug("googleads: API não configurada, usando dados simulados")
	} else {
		logrus.WithError(err).Warn("googleads: falha na API real")
	}

	if !s.cfg.Providers.SimulationFallback {
		return nil, err
	}

	return s.simulator.GoogleAds(), nil
}
