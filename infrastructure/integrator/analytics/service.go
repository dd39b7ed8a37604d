package analytics

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/analytics/analyticsclient"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/simulation"
	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// AnalyticsIntegrator é o adaptador do Google Analytics, a fonte de
// sessões, receita e taxa de rejeição
type AnalyticsIntegrator struct {
	cfg       *config.Config
	Client    analyticsclient.Client
	simulator *simulation.Generator
}

func New(cfg *config.Config, client analyticsclient.Client, simulator *simulation.Generator) *AnalyticsIntegrator {
	return &AnalyticsIntegrator{
		cfg:       cfg,
		Client:    client,
		simulator: simulator,
	}
}

func (s *AnalyticsIntegrator) ID() string {
	return domain.SourceGoogleAnalytics
}

func (s *AnalyticsIntegrator) Fetch(ctx context.Context) (domain.RawPayload, error) {
	payload, err := s.Client.RunReport(ctx)
	if err == nil {
		return payload, nil
	}

	if errors.Is(err, analyticsclient.ErrNotConfigured) {
		logrus.Debug("analytics: API não configurada, usando dados simulados")
	} else {
		logrus.WithError(err).Warn("analytics: falha na API real")
	}

	if !s.cfg.Providers.SimulationFallback {
		return nil, err
	}

	return s.simulator.GoogleAnalytics(), nil
}
