// logging.go — журнал обработанных запросов Report Service.
//
// Одна запись на запрос. Уровень отражает, требует ли исход внимания
// оператора: опросы health/metrics идут в DEBUG, штатные отказы клиенту
// (400, 401, 404) в INFO, конфликт параллельных изменений отчёта (409)
// в WARN, ответы 5xx в ERROR.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// statusRecorder запоминает статус и размер ответа. Общий для журнала и метрик.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// requestLogLevel выбирает уровень записи по маршруту и статусу ответа.
func requestLogLevel(route string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case route == "/metrics" || route == "/openapi.yaml" || strings.HasPrefix(route, "/health/"):
		return slog.LevelDebug
	case status == http.StatusConflict:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger возвращает middleware журнала запросов. Помимо метода,
// маршрута и статуса пишет id изменяемого отчёта и mu-call-id, по которым
// запись связывается с цепочкой identifier/dispatcher.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := normalizePath(r.URL.Path)
			level := requestLogLevel(route, rec.status)
			if !logger.Enabled(r.Context(), level) {
				return
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.bytes),
			}
			if id, ok := reportIDFromPath(r.URL.Path); ok {
				attrs = append(attrs, slog.String("report_id", id))
			}
			if callID := r.Header.Get(sparql.HeaderCallID); callID != "" {
				attrs = append(attrs, slog.String("call_id", callID))
			}

			logger.LogAttrs(r.Context(), level, "Запрос к Report Service обработан", attrs...)
		})
	}
}
