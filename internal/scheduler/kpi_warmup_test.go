package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/aggregating/mocks"
)

func warmupTestConfig(enabled bool) *config.Config {
	return &config.Config{
		KpiWarmup: config.KpiWarmup{
			CronSchedule: "*/4 * * * *",
			Enabled:      enabled,
		},
	}
}

// TestKpiWarmupService_Warmup testa os cenários de execução do aquecimento
func TestKpiWarmupService_Warmup(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(aggregator *mocks.MockAggregator)
		expectedError string
	}{
		{
			name: "Aquecimento bem-sucedido deve forçar refresh e limpar último erro",
			setup: func(aggregator *mocks.MockAggregator) {
				aggregator.EXPECT().GetSnapshot(gomock.Any(), true).Return(&domain.KpiSnapshot{
					ID:        "snap_ok_123",
					CreatedAt: time.Now(),
				}, nil)
			},
		},
		{
			name: "Falha no refresh deve registrar o erro no status",
			setup: func(aggregator *mocks.MockAggregator) {
				aggregator.EXPECT().GetSnapshot(gomock.Any(), true).
					Return(nil, errors.New("nenhuma fonte de dados disponível"))
			},
			expectedError: "nenhuma fonte de dados disponível",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			aggregator := mocks.NewMockAggregator(ctrl)
			tt.setup(aggregator)

			service := NewKpiWarmupService(aggregator, warmupTestConfig(true))
			service.warmup(context.Background())

			status := service.Status()
			assert.Equal(t, false, status["running"])
			assert.NotEmpty(t, status["last_run_started_at"])
			assert.NotEmpty(t, status["last_run_completed_at"])

			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, status["last_run_error"])
			} else {
				assert.NotContains(t, status, "last_run_error")
			}
		})
	}
}

// TestKpiWarmupService_WarmupAlreadyRunning garante que execuções sobrepostas são ignoradas
func TestKpiWarmupService_WarmupAlreadyRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	started := make(chan struct{})
	release := make(chan struct{})

	aggregator := mocks.NewMockAggregator(ctrl)
	aggregator.EXPECT().GetSnapshot(gomock.Any(), true).
		DoAndReturn(func(ctx context.Context, forceRefresh bool) (*domain.KpiSnapshot, error) {
			close(started)
			<-release
			return &domain.KpiSnapshot{ID: "snap_slow"}, nil
		}).Times(1)

	service := NewKpiWarmupService(aggregator, warmupTestConfig(true))

	done := make(chan struct{})
	go func() {
		service.warmup(context.Background())
		close(done)
	}()

	<-started
	assert.Equal(t, true, service.Status()["running"])

	// Segunda chamada enquanto a primeira ainda roda: não deve chamar o agregador de novo
	service.warmup(context.Background())

	close(release)
	<-done

	assert.Equal(t, false, service.Status()["running"])
}

// TestKpiWarmupService_StartDisabled verifica que o agendador não inicia quando desabilitado
func TestKpiWarmupService_StartDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	aggregator := mocks.NewMockAggregator(ctrl)

	service := NewKpiWarmupService(aggregator, warmupTestConfig(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := service.Start(ctx)
	assert.NoError(t, err)

	status := service.Status()
	assert.Equal(t, false, status["enabled"])
}

// TestKpiWarmupService_StartInvalidCron verifica o erro de agendamento com cron inválido
func TestKpiWarmupService_StartInvalidCron(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	aggregator := mocks.NewMockAggregator(ctrl)

	cfg := warmupTestConfig(true)
	cfg.KpiWarmup.CronSchedule = "isso não é um cron"

	service := NewKpiWarmupService(aggregator, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := service.Start(ctx)
	assert.Error(t, err)
}
