// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Report Service мониторит одну зависимость: SPARQL endpoint triple store.
// HTTP checker делает GET на путь endpoint (Virtuoso отвечает 200 на GET /sparql
// без query). Зависимость критическая: без неё сервис не обслуживает запросы.
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/prometheus/client_golang/prometheus"
)

// sparqlDepName — имя зависимости в метриках и в ключах Health().
const sparqlDepName = "sparql"

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга SPARQL endpoint.
// Метрики регистрируются в глобальном Prometheus registry.
//
// Параметры:
//   - serviceID — имя вершины графа текущего приложения (bbcdr-report-service)
//   - group — имя группы в метриках (BBCDR_DEPHEALTH_GROUP)
//   - sparqlEndpoint — URL SPARQL endpoint (MU_SPARQL_ENDPOINT)
//   - checkInterval — интервал проверки (BBCDR_DEPHEALTH_CHECK_INTERVAL)
//   - isEntry — лейбл isentry=yes (DEPHEALTH_ISENTRY)
//   - tlsSkipVerify — не проверять сертификат https endpoint (BBCDR_DEPHEALTH_TLS_SKIP_VERIFY)
func NewDephealthService(
	serviceID string,
	group string,
	sparqlEndpoint string,
	checkInterval time.Duration,
	isEntry bool,
	tlsSkipVerify bool,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, sparqlEndpoint, checkInterval, isEntry, tlsSkipVerify, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	sparqlEndpoint string,
	checkInterval time.Duration,
	isEntry bool,
	tlsSkipVerify bool,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, sparqlEndpoint, checkInterval, isEntry, tlsSkipVerify,
		logger, dephealth.WithRegisterer(registerer))
}

// newDephealthService — внутренний конструктор.
func newDephealthService(
	serviceID string,
	group string,
	sparqlEndpoint string,
	checkInterval time.Duration,
	isEntry bool,
	tlsSkipVerify bool,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	parsed, err := url.Parse(sparqlEndpoint)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL SPARQL endpoint: %w", err)
	}
	healthPath := parsed.Path
	if healthPath == "" {
		healthPath = "/"
	}

	depOpts := []dephealth.DependencyOption{
		dephealth.FromURL(sparqlEndpoint),
		dephealth.WithHTTPHealthPath(healthPath),
		dephealth.CheckInterval(checkInterval),
		dephealth.Critical(true),
	}
	if isEntry {
		depOpts = append(depOpts, dephealth.WithLabel("isentry", "yes"))
	}
	// HTTP checker не принимает CA-сертификат: endpoint с сертификатом
	// частного CA проверяется только с отключённой верификацией.
	if parsed.Scheme == "https" && tlsSkipVerify {
		depOpts = append(depOpts, dephealth.WithHTTPTLSSkipVerify(true))
	}

	opts := make([]dephealth.Option, 0, 2+len(extraOpts))
	opts = append(opts,
		dephealth.WithLogger(logger),
		dephealth.HTTP(sparqlDepName, depOpts...),
	)
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (SPARQL endpoint)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ имеет вид "имя:host:port", значение true означает ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
