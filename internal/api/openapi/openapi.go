// Пакет openapi — встроенный OpenAPI-контракт Report Service.
// Контракт загружается и валидируется при старте (kin-openapi) и
// отдаётся клиентам на /openapi.yaml.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// Spec — загруженный и провалидированный контракт.
type Spec struct {
	doc *openapi3.T
	raw []byte
}

// Load разбирает встроенный контракт и проверяет его корректность.
func Load(ctx context.Context) (*Spec, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("разбор OpenAPI контракта: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("валидация OpenAPI контракта: %w", err)
	}
	return &Spec{doc: doc, raw: specYAML}, nil
}

// Version возвращает версию контракта (info.version).
func (s *Spec) Version() string {
	return s.doc.Info.Version
}

// ValidateJSON проверяет JSON-значение по схеме components/schemas/<name>.
// value сериализуется и разбирается заново, чтобы схема видела те же типы,
// что и клиент (map[string]any, float64, ...).
func (s *Spec) ValidateJSON(name string, value any) error {
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return fmt.Errorf("схема %q не найдена в контракте", name)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("сериализация значения: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("разбор значения: %w", err)
	}
	if err := ref.Value.VisitJSON(decoded); err != nil {
		return fmt.Errorf("значение не соответствует схеме %q: %w", name, err)
	}
	return nil
}

// ServeHTTP отдаёт контракт в YAML.
func (s *Spec) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.raw)
}
