// results.go — разбор ответа application/sparql-results+json.
package sparql

import (
	"fmt"
	"time"
)

// Binding — значение одной переменной в строке результата.
type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Row — одна строка результата SELECT.
type Row map[string]Binding

// Get возвращает значение переменной или пустую строку.
func (r Row) Get(name string) string {
	return r[name].Value
}

// Time разбирает значение переменной как xsd:dateTime.
func (r Row) Time(name string) (time.Time, error) {
	b, ok := r[name]
	if !ok {
		return time.Time{}, fmt.Errorf("переменная %q отсутствует в результате", name)
	}
	t, err := time.Parse(time.RFC3339Nano, b.Value)
	if err != nil {
		// Некоторые хранилища (Virtuoso) отдают dateTime без зоны — считаем UTC
		t, err = time.ParseInLocation(localDateTimeLayout, b.Value, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("некорректный xsd:dateTime %q в ?%s: %w", b.Value, name, err)
		}
	}
	return t, nil
}

const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

// Results — результат SELECT или ASK.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	// Boolean — результат ASK (nil для SELECT)
	Boolean *bool `json:"boolean,omitempty"`
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}

// Rows возвращает строки результата SELECT.
func (r *Results) Rows() []Row {
	if r == nil {
		return nil
	}
	return r.Results.Bindings
}
