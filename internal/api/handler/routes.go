package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oneview/kpi-dashboard-api/infrastructure/repository"
	"github.com/oneview/kpi-dashboard-api/internal/api/handler/router"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/aggregating"
	"github.com/oneview/kpi-dashboard-api/internal/usecases/authenticating"
	"github.com/oneview/kpi-dashboard-api/pkg/middleware"
)

// Serialização das respostas via json-iterator, compatível com a stdlib
var json = jsoniter.ConfigCompatibleWithStandardLibrary

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

// Metrics expõe os contadores Prometheus do processo
func Metrics(registry *prometheus.Registry) []router.Route {
	return []router.Route{
		{
			Path:   "/metrics",
			Method: http.MethodGet,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
				EnableOpenMetrics: true,
			}),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func User(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodGet,
			Handler:     GetUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodPut,
			Handler:     UpdateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/users/:id/change-password",
			Method:      http.MethodPost,
			Handler:     ChangePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Kpi(service aggregating.Aggregator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/kpi-data",
			Method:      http.MethodGet,
			Handler:     GetKpiData(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/data-source-status",
			Method:      http.MethodGet,
			Handler:     GetDataSourceStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Cache(service aggregating.Aggregator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cache/clear",
			Method:      http.MethodPost,
			Handler:     ClearCache(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cache/stats",
			Method:      http.MethodGet,
			Handler:     GetCacheStats(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func KpiHistory(repo repository.KpiHistoryRepository) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/kpi-history",
			Method:      http.MethodGet,
			Handler:     GetKpiHistory(repo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
