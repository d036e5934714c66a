// Пакет errors — ответы с ошибками в формате сервиса.
// Единый формат: {"status": <код>, "title": "..."} с Content-Type application/vnd.api+json.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/bigkaa/bbcdr-report-service/internal/jsonapi"
)

// Заголовки ошибок, которые видит клиент.
const (
	TitleInvalidRequest = "request is invalid"
	TitleUnauthorized   = "could not find an account linked to this session"
	TitleNotFound       = "report not found"
	TitleConflict       = "report was modified concurrently"
	TitleInternal       = "unexpected error while processing request"
)

// WriteError записывает ответ ошибки в стандартном формате.
func WriteError(w http.ResponseWriter, statusCode int, title string) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(jsonapi.ErrorDocument{
		Status: statusCode,
		Title:  title,
	})
}

// --- Конструкторы для типичных ошибок ---

// InvalidRequest — 400 тело запроса не прошло проверку.
func InvalidRequest(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, TitleInvalidRequest)
}

// Unauthorized — 401 сессия отсутствует или не связана с аккаунтом.
func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, TitleUnauthorized)
}

// NotFound — 404 отчёт не найден.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, TitleNotFound)
}

// Conflict — 409 отчёт изменён параллельным запросом.
func Conflict(w http.ResponseWriter) {
	WriteError(w, http.StatusConflict, TitleConflict)
}

// InternalError — 500 внутренняя ошибка. Причина в ответ не попадает.
func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, TitleInternal)
}
