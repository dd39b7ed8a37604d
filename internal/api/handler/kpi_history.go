package handler

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/infrastructure/repository"
	"github.com/oneview/kpi-dashboard-api/pkg/apiErrors"
)

const defaultHistoryLimit = 50

// GetKpiHistory lista as métricas-chave dos snapshots persistidos, do mais
// recente para o mais antigo
func GetKpiHistory(repo repository.KpiHistoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetKpiHistory")

		limit := defaultHistoryLimit
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed <= 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro limit inválido", nil)
				return
			}
			limit = parsed
		}

		entries, err := repo.ListRecent(limit)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar histórico de KPIs")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar histórico", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"history": entries,
		})
	}
}
