// Пакет repository — слой доступа к данным triple store для Report Service.
// Все запросы — SPARQL, построенный через пакет sparql (экранирование
// централизовано там), без ORM и без маппинга RDF общего назначения.
package repository

import (
	"context"
	"errors"

	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
)

// Store — интерфейс выполнения SPARQL-запросов.
// Реализуется *sparql.Client; в тестах подменяется моком.
type Store interface {
	// Query выполняет SELECT/ASK и возвращает строки результата.
	Query(ctx context.Context, query string) (*sparql.Results, error)
	// Update выполняет SPARQL Update.
	Update(ctx context.Context, update string) error
}
