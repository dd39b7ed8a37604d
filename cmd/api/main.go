package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/infrastructure/database/postgres"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/analytics"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/analytics/analyticsclient"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/googleads"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/googleads/googleadsclient"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/metaads"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/metaads/metaadsclient"
	"github.com/oneview/kpi-dashboard-api/infrastructure/integrator/simulation"
	"github.com/oneview/kpi-dashboard-api/infrastructure/repository"
	"github.com/oneview/kpi-dashboard-api/internal/api"
	"github.com/oneview/kpi-dashboard-api/internal/cache"
	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/metrics"
	"github.com/oneview/kpi-dashboard-api/internal/scheduler"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/aggregating"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/authenticating"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	kpiHistoryRepo := repository.NewKpiHistoryRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	// Registrador Prometheus do processo
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	kpiMetrics := metrics.New(registry)

	// Gerador compartilhado de dados simulados para fallback dos provedores
	simulator := simulation.New(cfg.Providers.SimulationSeed)

	googleAdsIntegrator := googleads.New(cfg, googleadsclient.NewClient(cfg), simulator)
	metaAdsIntegrator := metaads.New(cfg, metaadsclient.NewClient(cfg), simulator)
	analyticsIntegrator := analytics.New(cfg, analyticsclient.NewClient(cfg), simulator)

	snapshotCache := cache.New(cfg.Cache.TTL())

	// Inicializa o agregador com persistência de histórico de snapshots
	aggregator := aggregating.NewService(
		cfg,
		snapshotCache,
		[]aggregating.Provider{googleAdsIntegrator, metaAdsIntegrator, analyticsIntegrator},
		kpiMetrics,
	).WithHistory(kpiHistoryRepo)

	// Inicializa o agendador de aquecimento do cache
	warmupService := scheduler.NewKpiWarmupService(aggregator, cfg)
	if err := warmupService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de aquecimento de KPIs")
	} else {
		logrus.Info("Agendador de aquecimento de KPIs iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		aggregator,
		authenticator,
		kpiHistoryRepo,
		warmupService,
		registry,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
