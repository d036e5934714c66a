// session.go — middleware аутентификации по сессии mu.semte.ch.
// Заголовок mu-session-id содержит IRI сессии, созданной login-сервисом.
// Сессия разрешается в пользователя и группу через triple store и
// помещается в контекст запроса для downstream handlers.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/bbcdr-report-service/internal/api/errors"
	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
	"github.com/bigkaa/bbcdr-report-service/internal/repository"
	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeySession — разрешённая сессия в контексте запроса.
	ContextKeySession contextKey = "mu_session"
)

// SessionAuth — middleware аутентификации по mu-session-id.
type SessionAuth struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewSessionAuth создаёт middleware аутентификации по сессии.
func NewSessionAuth(sessions repository.SessionRepository, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_auth")),
	}
}

// Middleware возвращает HTTP middleware.
// Без заголовка или для сессии без аккаунта отвечает 401, при ошибке хранилища 500.
// Заголовки mu-session-id и mu-call-id сохраняются в контексте до обращения
// к хранилищу, поэтому SPARQL-клиент передаёт их уже при разрешении сессии.
func (a *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(sparql.HeaderSessionID)
			if sessionID == "" {
				apierrors.Unauthorized(w)
				return
			}

			ctx := sparql.WithMuHeaders(r.Context(), sparql.MuHeaders{
				SessionID: sessionID,
				CallID:    r.Header.Get(sparql.HeaderCallID),
			})

			session, err := a.sessions.Resolve(ctx, sessionID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					a.logger.Debug("Сессия не связана с аккаунтом",
						slog.String("session", sessionID),
						slog.String("error", err.Error()),
					)
					apierrors.Unauthorized(w)
					return
				}
				a.logger.Error("Ошибка разрешения сессии",
					slog.String("session", sessionID),
					slog.String("error", err.Error()),
				)
				apierrors.InternalError(w)
				return
			}

			ctx = WithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// --- Context helpers ---

// SessionFromContext извлекает сессию из контекста запроса.
// Возвращает nil, если сессия не найдена.
func SessionFromContext(ctx context.Context) *model.Session {
	session, _ := ctx.Value(ContextKeySession).(*model.Session)
	return session
}

// WithSession помещает сессию в контекст.
func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, session)
}
