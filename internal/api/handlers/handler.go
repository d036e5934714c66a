// handler.go — основной обработчик API Report Service.
// Объединяет health и бизнес-обработчики отчётов.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
)

// ReportService — операции с отчётами, которые нужны обработчикам.
// Реализуется *service.ReportService.
type ReportService interface {
	Create(ctx context.Context, session *model.Session, rels model.Relationships) (*model.Report, error)
	Update(ctx context.Context, id string, session *model.Session, rels model.Relationships) (*model.Report, error)
}

// APIHandler — основной обработчик API Report Service.
type APIHandler struct {
	health  *HealthHandler
	reports ReportService
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	reports ReportService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:  health,
		reports: reports,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом и типом содержимого.
func writeJSON(w http.ResponseWriter, status int, contentType string, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
