package repository

import (
	"context"

	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// mockStore — мок Store с функциональными полями.
type mockStore struct {
	queryFn  func(ctx context.Context, query string) (*sparql.Results, error)
	updateFn func(ctx context.Context, update string) error

	queries []string
	updates []string
}

func (m *mockStore) Query(ctx context.Context, query string) (*sparql.Results, error) {
	m.queries = append(m.queries, query)
	if m.queryFn != nil {
		return m.queryFn(ctx, query)
	}
	return &sparql.Results{}, nil
}

func (m *mockStore) Update(ctx context.Context, update string) error {
	m.updates = append(m.updates, update)
	if m.updateFn != nil {
		return m.updateFn(ctx, update)
	}
	return nil
}

// rows собирает результат SELECT из строк вида {"var": "value"}.
func rows(values ...map[string]string) *sparql.Results {
	res := &sparql.Results{}
	for _, v := range values {
		row := sparql.Row{}
		for name, val := range v {
			row[name] = sparql.Binding{Type: "literal", Value: val}
		}
		res.Results.Bindings = append(res.Results.Bindings, row)
	}
	return res
}

var testGraph = sparql.MustIRI("http://mu.semte.ch/application")
