package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/aggregating"
)

// KpiWarmupConfig representa a configuração do agendador de aquecimento do cache
type KpiWarmupConfig struct {
	CronSchedule  string
	WarmupEnabled bool
}

// KpiWarmupService reagenda um refresh do snapshot um pouco antes do TTL
// expirar, para que as requisições dos usuários encontrem o cache quente
type KpiWarmupService struct {
	scheduler          *gocron.Scheduler
	config             KpiWarmupConfig
	aggregator         aggregating.Aggregator
	warmupRunning      bool
	warmupMutex        sync.Mutex
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
	lastRunError       string
}

// NewKpiWarmupService cria uma nova instância do serviço de aquecimento
func NewKpiWarmupService(aggregator aggregating.Aggregator, appConfig *config.Config) *KpiWarmupService {
	warmupConfig := KpiWarmupConfig{
		CronSchedule:  appConfig.KpiWarmup.CronSchedule,
		WarmupEnabled: appConfig.KpiWarmup.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  warmupConfig.CronSchedule,
		"warmup_enabled": warmupConfig.WarmupEnabled,
	}).Info("Configuração do agendador de aquecimento de KPIs carregada")

	return &KpiWarmupService{
		scheduler:  scheduler,
		config:     warmupConfig,
		aggregator: aggregator,
	}
}

// Start inicia o agendador
func (s *KpiWarmupService) Start(ctx context.Context) error {
	if !s.config.WarmupEnabled {
		logrus.Info("Aquecimento do cache de KPIs desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de aquecimento de KPIs")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.warmup(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar aquecimento do cache de KPIs: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de aquecimento de KPIs")
		s.scheduler.Stop()
	}()

	return nil
}

// TriggerManualWarmup dispara um aquecimento fora do horário agendado.
// Roda em background com contexto próprio para não ser cancelado junto
// com a requisição que o disparou.
func (s *KpiWarmupService) TriggerManualWarmup() {
	go s.warmup(context.Background())
}

// warmup força um refresh do snapshot. O coalescing de refreshes
// concorrentes fica por conta do agregador.
func (s *KpiWarmupService) warmup(ctx context.Context) {
	s.warmupMutex.Lock()
	if s.warmupRunning {
		s.warmupMutex.Unlock()
		logrus.Info("Aquecimento do cache já em andamento, ignorando")
		return
	}
	s.warmupRunning = true
	s.lastRunStartedAt = time.Now()
	s.warmupMutex.Unlock()

	defer func() {
		s.warmupMutex.Lock()
		s.warmupRunning = false
		s.lastRunCompletedAt = time.Now()
		s.warmupMutex.Unlock()
	}()

	startTime := time.Now()

	snapshot, err := s.aggregator.GetSnapshot(ctx, true)
	if err != nil {
		s.warmupMutex.Lock()
		s.lastRunError = err.Error()
		s.warmupMutex.Unlock()

		logrus.WithError(err).Error("Erro ao aquecer o cache de KPIs")
		return
	}

	s.warmupMutex.Lock()
	s.lastRunError = ""
	s.warmupMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"duration":    time.Since(startTime).String(),
	}).Info("Cache de KPIs aquecido com sucesso")
}

// Status retorna o estado atual do agendador para exibição
func (s *KpiWarmupService) Status() map[string]any {
	s.warmupMutex.Lock()
	defer s.warmupMutex.Unlock()

	status := map[string]any{
		"enabled":       s.config.WarmupEnabled,
		"cron_schedule": s.config.CronSchedule,
		"running":       s.warmupRunning,
	}

	if !s.lastRunStartedAt.IsZero() {
		status["last_run_started_at"] = s.lastRunStartedAt.Format(time.RFC3339)
	}
	if !s.lastRunCompletedAt.IsZero() {
		status["last_run_completed_at"] = s.lastRunCompletedAt.Format(time.RFC3339)
	}
	if s.lastRunError != "" {
		status["last_run_error"] = s.lastRunError
	}

	return status
}
