// main.go — точка входа Report Service.
// Порядок: config → logger → SPARQL client → repositories → service →
// OpenAPI contract → handlers → session middleware → topologymetrics → HTTP-сервер.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/bigkaa/bbcdr-report-service/internal/api/handlers"
	"github.com/bigkaa/bbcdr-report-service/internal/api/middleware"
	"github.com/bigkaa/bbcdr-report-service/internal/api/openapi"
	"github.com/bigkaa/bbcdr-report-service/internal/config"
	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
	"github.com/bigkaa/bbcdr-report-service/internal/repository"
	"github.com/bigkaa/bbcdr-report-service/internal/server"
	"github.com/bigkaa/bbcdr-report-service/internal/service"
	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// serviceID — имя вершины графа в метриках topologymetrics.
const serviceID = "bbcdr-report-service"

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Report Service запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("sparql_endpoint", cfg.SPARQLEndpoint),
		slog.String("graph", cfg.ApplicationGraph),
	)

	// 3. SPARQL client
	store, err := sparql.New(cfg.SPARQLEndpoint, cfg.SPARQLCACertPath, cfg.SPARQLTimeout, logger)
	if err != nil {
		logger.Error("Ошибка создания SPARQL клиента", slog.String("error", err.Error()))
		os.Exit(1)
	}
	graph, err := sparql.IRI(cfg.ApplicationGraph)
	if err != nil {
		logger.Error("Некорректный IRI графа", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Repositories
	sessionRepo := repository.NewSessionRepository(store, graph)
	reportRepo := repository.NewReportRepository(store, graph)

	// 5. Сервис отчётов
	reportSvc := service.NewReportService(
		reportRepo,
		cfg.BaseIRI,
		model.StatusRef{IRI: cfg.DraftStatusIRI, UUID: cfg.DraftStatusID},
		logger,
	)

	// 6. OpenAPI контракт (встроен в бинарник, проверяется при старте)
	ctx := context.Background()
	spec, err := openapi.Load(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("OpenAPI контракт загружен", slog.String("api_version", spec.Version()))

	// 7. Handlers
	healthHandler := handlers.NewHealthHandler(store)
	apiHandler := handlers.NewAPIHandler(healthHandler, reportSvc, logger)

	// 8. Session middleware
	sessionAuth := middleware.NewSessionAuth(sessionRepo, logger)

	// 9. topologymetrics — мониторинг SPARQL endpoint
	var dephealthSvc *service.DephealthService
	if cfg.DephealthEnabled {
		dephealthSvc, err = service.NewDephealthService(
			serviceID,
			cfg.DephealthGroup,
			cfg.SPARQLEndpoint,
			cfg.DephealthCheckInterval,
			cfg.DephealthIsEntry,
			cfg.DephealthTLSSkipVerify,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
			dephealthSvc = nil
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 10. HTTP-сервер
	router := server.NewRouter(
		server.Routes{
			API:     apiHandler,
			Session: sessionAuth.Middleware(),
			OpenAPI: spec,
		},
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)
	srv := server.New(cfg, logger, router)

	// 11. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Report Service остановлен")
}
