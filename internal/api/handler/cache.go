package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/oneview/kpi-dashboard-api/internal/usecases/aggregating"
)

// ClearCache descarta o snapshot atual. O próximo acesso dispara um refresh
// completo nos provedores.
func ClearCache(service aggregating.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ClearCache")

		service.ClearCache()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Cache limpo com sucesso",
		})
	}
}

// GetCacheStats expõe os contadores do cache de snapshots
func GetCacheStats(service aggregating.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCacheStats")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"cache_stats": service.CacheStats(),
		})
	}
}
