package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// SessionRepository — поиск пользователя и группы по IRI сессии.
type SessionRepository interface {
	// Resolve возвращает сессию или ErrNotFound, если сессия не связана с аккаунтом.
	Resolve(ctx context.Context, sessionIRI string) (*model.Session, error)
}

// sessionRepo — реализация SessionRepository поверх Store.
type sessionRepo struct {
	store Store
	graph sparql.Term
}

// NewSessionRepository создаёт репозиторий сессий.
// graph — граф, в котором хранятся сессии, аккаунты и группы.
func NewSessionRepository(store Store, graph sparql.Term) SessionRepository {
	return &sessionRepo{store: store, graph: graph}
}

// Resolve ищет пользователя (session:account / ^foaf:account) и группу
// (ext:sessionGroup) сессии. Значение, не являющееся допустимым IRI,
// считается неизвестной сессией.
func (r *sessionRepo) Resolve(ctx context.Context, sessionIRI string) (*model.Session, error) {
	session, err := sparql.IRI(sessionIRI)
	if err != nil {
		return nil, fmt.Errorf("%w: сессия %q: %v", ErrNotFound, sessionIRI, err)
	}

	results, err := r.store.Query(ctx, buildSessionQuery(r.graph, session))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сессии: %w", err)
	}

	rows := results.Rows()
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	row := rows[0]
	return &model.Session{
		User:    row.Get("user"),
		Group:   row.Get("group"),
		UserID:  row.Get("userID"),
		GroupID: row.Get("groupID"),
	}, nil
}

// buildSessionQuery строит SELECT пользователя и группы сессии.
func buildSessionQuery(graph, session sparql.Term) string {
	return sparql.Prologue() + sparql.Format(`
SELECT ?user ?group ?userID ?groupID
WHERE {
  GRAPH %s {
    %s session:account/^foaf:account ?user ;
       ext:sessionGroup ?group .
    ?user mu:uuid ?userID .
    ?group mu:uuid ?groupID .
  }
}
LIMIT 1`, graph, session)
}
