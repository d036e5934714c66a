// reports.go — обработчики отчётов BBCDR.
// POST /bbcdr-reports/, POST /bbcdr-rapporten/ (устаревший маршрут),
// PATCH /bbcdr-reports/{id}.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/bbcdr-report-service/internal/api/errors"
	"github.com/bigkaa/bbcdr-report-service/internal/api/middleware"
	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
	"github.com/bigkaa/bbcdr-report-service/internal/jsonapi"
	"github.com/bigkaa/bbcdr-report-service/internal/service"
)

// maxBodyBytes — максимальный размер тела запроса.
const maxBodyBytes = 1 << 20

// CreateReport — POST /bbcdr-reports/.
func (h *APIHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	h.createReport(w, r, jsonapi.TypeReports)
}

// CreateLegacyReport — POST /bbcdr-rapporten/.
// Принимает тело с устаревшим типом bbcdr-rapporten.
func (h *APIHandler) CreateLegacyReport(w http.ResponseWriter, r *http.Request) {
	h.createReport(w, r, jsonapi.TypeLegacyReports)
}

func (h *APIHandler) createReport(w http.ResponseWriter, r *http.Request, resourceType string) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		apierrors.Unauthorized(w)
		return
	}

	body, ok := decodeBody(w, r)
	if !ok || !jsonapi.HasValidCreateBody(body, resourceType) {
		apierrors.InvalidRequest(w)
		return
	}

	report, err := h.reports.Create(r.Context(), session, jsonapi.ParseRelationships(body))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apierrors.InvalidRequest(w)
			return
		}
		h.logger.Error("Ошибка создания отчёта",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, jsonapi.MediaType, reportDocument(report, session))
}

// PatchReport — PATCH /bbcdr-reports/{id}.
func (h *APIHandler) PatchReport(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		apierrors.Unauthorized(w)
		return
	}

	// chi сопоставляет маршрут по RawPath, если он задан, и тогда отдаёт
	// сегмент в percent-encoded виде ("r%2F1"); runtime декодирует его по
	// правилам path-параметра. Тип остаётся string: неизвестный id даёт 404, а не 400.
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil || id == "" {
		apierrors.InvalidRequest(w)
		return
	}

	body, ok := decodeBody(w, r)
	if !ok || !jsonapi.HasValidPatchBody(body, jsonapi.TypeReports) {
		apierrors.InvalidRequest(w)
		return
	}

	report, err := h.reports.Update(r.Context(), id, session, jsonapi.ParseRelationships(body))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w)
		case errors.Is(err, service.ErrInvalidStatus):
			apierrors.InvalidRequest(w)
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w)
		default:
			h.logger.Error("Ошибка изменения отчёта",
				slog.String("report_id", id),
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, jsonapi.MediaType, reportDocument(report, session))
}

// decodeBody разбирает тело запроса как JSON-объект.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}
	return body, true
}

// reportDocument собирает документ ответа. gebruiker и bestuurseenheid —
// пользователь и группа сессии, выполнившей изменение.
func reportDocument(report *model.Report, session *model.Session) jsonapi.Document {
	return jsonapi.BuildReportResponse(
		report.ID,
		report.Created,
		report.Modified,
		report.FileIDs(),
		report.Status.UUID,
		session.UserID,
		session.GroupID,
	)
}
