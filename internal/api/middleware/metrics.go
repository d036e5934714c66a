// metrics.go — Prometheus HTTP метрики Report Service.
// Регистрирует метрики: bbcdr_http_requests_total, bbcdr_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики Report Service
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bbcdr_http_requests_total",
			Help: "Общее количество HTTP-запросов к Report Service",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bbcdr_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Report Service в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			status := strconv.Itoa(rec.status)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// reportIDFromPath возвращает id из пути /bbcdr-reports/{id}.
func reportIDFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/bbcdr-reports/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// normalizePath заменяет идентификаторы в пути на {id}.
// /bbcdr-reports/<любой id> → /bbcdr-reports/{id}
// Прочие пути: сегменты в формате UUID → {id}.
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics", "/openapi.yaml",
		"/bbcdr-reports", "/bbcdr-reports/", "/bbcdr-rapporten/":
		return path
	}

	if _, ok := reportIDFromPath(path); ok {
		return "/bbcdr-reports/{id}"
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := uuid.Parse(s); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
