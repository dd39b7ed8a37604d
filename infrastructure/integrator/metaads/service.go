package metaads

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/metaads/metaadsclient"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/simulation"
	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// MetaAdsIntegrator é o adaptador da Marketing API do Meta
type MetaAdsIntegrator struct {
	cfg       *config.Config
	Client    metaadsclient.Client
	simulator *simulation.Generator
}

func New(cfg *config.Config, client metaadsclient.Client, simulator *simulation.Generator) *MetaAdsIntegrator {
	return &MetaAdsIntegrator{
		cfg:       cfg,
		Client:    client,
		simulator: simulator,
	}
}

func (s *MetaAdsIntegrator) ID() string {
	return domain.SourceMetaAds
}

func (s *MetaAdsIntegrator) Fetch(ctx context.Context) (domain.RawPayload, error) {
	payload, err := s.Client.FetchAccountInsights(ctx)
	if err == nil {
		return payload, nil
	}

	if errors.Is(err, metaadsclient.ErrNotConfigured) {
		logrus.Debug("metaads: API não configurada, usando dados simulados")
	} else {
		logrus.WithError(err).Warn("metaads: falha na API real")
	}

	if !s.cfg.Providers.SimulationFallback {
		return nil, err
	}

	return s.simulator.MetaAds(), nil
}
