// Пакет server — HTTP-сервер Report Service с graceful shutdown.
// Без TLS: HTTP внутри стека, TLS termination на identifier/dispatcher.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/bbcdr-report-service/internal/api/handlers"
	"github.com/bigkaa/bbcdr-report-service/internal/config"
)

// Server — HTTP-сервер Report Service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// Routes описывает зависимости маршрутов.
type Routes struct {
	// API — обработчики отчётов и health endpoints
	API *handlers.APIHandler
	// Session — middleware аутентификации, применяется только к маршрутам отчётов
	Session func(http.Handler) http.Handler
	// OpenAPI — отдача контракта на /openapi.yaml; при nil маршрут не регистрируется
	OpenAPI http.Handler
}

// NewRouter собирает chi router.
// middlewares (metrics, logging) применяются ко всем маршрутам в порядке среза.
func NewRouter(routes Routes, middlewares ...func(http.Handler) http.Handler) http.Handler {
	router := chi.NewRouter()
	for _, mw := range middlewares {
		router.Use(mw)
	}

	// Служебные маршруты без аутентификации
	router.Get("/health/live", routes.API.HealthLive)
	router.Get("/health/ready", routes.API.HealthReady)
	router.Get("/metrics", routes.API.GetMetrics)
	if routes.OpenAPI != nil {
		router.Method(http.MethodGet, "/openapi.yaml", routes.OpenAPI)
	}

	// Маршруты отчётов — только с сессией
	router.Group(func(r chi.Router) {
		if routes.Session != nil {
			r.Use(routes.Session)
		}
		r.Post("/bbcdr-reports", routes.API.CreateReport)
		r.Post("/bbcdr-reports/", routes.API.CreateReport)
		r.Patch("/bbcdr-reports/{id}", routes.API.PatchReport)
		r.Post("/bbcdr-rapporten/", routes.API.CreateLegacyReport)
	})

	return router
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
