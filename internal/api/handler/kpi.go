package handler

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/aggregating"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/projecting"
	"github.com/oneview/kpi-dashboard-api/pkg/apiErrors"
	"github.com/oneview/kpi-dashboard-api/pkg/middleware"
)

// KpiDataResponse é a resposta do endpoint principal do dashboard
type KpiDataResponse struct {
	Success    bool              `json:"success"`
	UserRole   string            `json:"user_role"`
	UserName   string            `json:"user_name"`
	Data       map[string]any    `json:"data"`
	CacheStats domain.CacheStats `json:"cache_stats"`
}

// GetKpiData retorna o snapshot de KPIs projetado para o papel do usuário
func GetKpiData(service aggregating.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetKpiData")

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		forceRefresh := r.URL.Query().Get("force_refresh") == "true"

		snapshot, err := service.GetSnapshot(r.Context(), forceRefresh)
		if err != nil {
			if errors.Is(err, aggregating.ErrAllSourcesUnavailable) {
				apiErrors.WriteError(w, apiErrors.ErrSourcesUnavailable, "Nenhuma fonte de dados disponível no momento", nil)
				return
			}

			logrus.WithError(err).Error("Erro ao obter snapshot de KPIs")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao obter dados de KPI", nil)
			return
		}

		roleName := domain.RoleName(userClaims.UserRoleID)

		data := map[string]any{
			"user_role":    roleName,
			"last_updated": snapshot.LastUpdated,
			"key_metrics":  projecting.Project(snapshot, userClaims.UserRoleID),
		}

		for providerID, source := range snapshot.PerSource {
			data[providerID] = source
		}

		response := KpiDataResponse{
			Success:    true,
			UserRole:   roleName,
			UserName:   fmt.Sprintf("%s %s", userClaims.UserName, userClaims.UserLastname),
			Data:       data,
			CacheStats: service.CacheStats(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logrus.WithError(err).Error("Erro ao enviar resposta de KPIs")
		}
	}
}

// GetDataSourceStatus informa, por provedor, se os dados servidos são reais
// ou simulados
func GetDataSourceStatus(service aggregating.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetDataSourceStatus")

		status, err := service.DataSourceStatus(r.Context())
		if err != nil {
			if errors.Is(err, aggregating.ErrAllSourcesUnavailable) {
				apiErrors.WriteError(w, apiErrors.ErrSourcesUnavailable, "Nenhuma fonte de dados disponível no momento", nil)
				return
			}

			logrus.WithError(err).Error("Erro ao consultar status das fontes de dados")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao consultar status das fontes", nil)
			return
		}

		simulated := make([]string, 0)
		for providerID, dataSource := range status {
			if dataSource == domain.DataSourceSimulated {
				simulated = append(simulated, providerID)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":           true,
			"sources":           status,
			"simulated_sources": simulated,
		})
	}
}
