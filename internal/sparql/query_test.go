package sparql

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestIRI_Valid проверяет сериализацию корректного IRI.
func TestIRI_Valid(t *testing.T) {
	term, err := IRI("http://data.lblod.info/bbcdr-reports/123")
	if err != nil {
		t.Fatalf("IRI ошибка: %v", err)
	}
	if term.String() != "<http://data.lblod.info/bbcdr-reports/123>" {
		t.Errorf("term = %q", term.String())
	}
}

// TestIRI_Invalid проверяет отказ на символах, ломающих запрос.
func TestIRI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"пустая строка", ""},
		{"пробел", "http://example.org/a b"},
		{"закрывающая скобка", "http://example.org/a> } ; DROP ALL ; {"},
		{"кавычка", `http://example.org/"x`},
		{"перевод строки", "http://example.org/\nx"},
		{"фигурная скобка", "http://example.org/{x}"},
		{"обратный слеш", `http://example.org/\x`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IRI(tt.raw)
			if err == nil {
				t.Fatalf("ожидалась ошибка для %q", tt.raw)
			}
			if !errors.Is(err, ErrInvalidIRI) {
				t.Errorf("ошибка = %v, ожидалась ErrInvalidIRI", err)
			}
		})
	}
}

// TestString_Escaping проверяет экранирование строковых литералов.
func TestString_Escaping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", `"abc"`},
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
		{"a\nb", `"a\nb"`},
		{"a\tb\r", `"a\tb\r"`},
		{`") } ; DROP ALL ; #`, `"\") } ; DROP ALL ; #"`},
	}
	for _, tt := range tests {
		if got := String(tt.in).String(); got != tt.want {
			t.Errorf("String(%q) = %s, ожидалось %s", tt.in, got, tt.want)
		}
	}
}

// TestDateTime проверяет формат xsd:dateTime (UTC, миллисекунды).
func TestDateTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 5, 10, 20, 30, 123456789, loc)

	got := DateTime(ts).String()
	want := `"2024-03-05T09:20:30.123Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`
	if got != want {
		t.Errorf("DateTime = %s, ожидалось %s", got, want)
	}
}

// TestVar_InvalidPanics проверяет, что недопустимое имя переменной — ошибка программиста.
func TestVar_InvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("ожидалась паника для недопустимого имени")
		}
	}()
	_ = Var("a b")
}

// TestListAndFormat проверяет подстановку термов в шаблон.
func TestListAndFormat(t *testing.T) {
	q := Format("FILTER(%s IN (%s))", Var("uuid"), List(Strings([]string{"a", "b"})))
	if q != `FILTER(?uuid IN ("a", "b"))` {
		t.Errorf("q = %s", q)
	}
}

// TestPrologue проверяет наличие префиксов словарей.
func TestPrologue(t *testing.T) {
	p := Prologue()
	for _, want := range []string{
		"PREFIX mu: <http://mu.semte.ch/vocabularies/core/>",
		"PREFIX nie: <http://www.semanticdesktop.org/ontologies/2007/01/19/nie#>",
		"PREFIX ext: <http://mu.semte.ch/vocabularies/ext/>",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("Prologue не содержит %q", want)
		}
	}
}

// TestRow_Time проверяет разбор dateTime с зоной и без.
func TestRow_Time(t *testing.T) {
	row := Row{
		"a": {Type: "literal", Value: "2024-03-05T09:20:30.123Z"},
		"b": {Type: "literal", Value: "2024-03-05T09:20:30.123"},
		"c": {Type: "literal", Value: "не дата"},
	}
	want := time.Date(2024, 3, 5, 9, 20, 30, 123000000, time.UTC)

	for _, name := range []string{"a", "b"} {
		got, err := row.Time(name)
		if err != nil {
			t.Fatalf("Time(%s) ошибка: %v", name, err)
		}
		if !got.Equal(want) {
			t.Errorf("Time(%s) = %v, ожидалось %v", name, got, want)
		}
	}
	if _, err := row.Time("c"); err == nil {
		t.Error("ожидалась ошибка для некорректного значения")
	}
	if _, err := row.Time("missing"); err == nil {
		t.Error("ожидалась ошибка для отсутствующей переменной")
	}
}

// TestTypedLiteral проверяет, что лексическая форма не нормализуется.
func TestTypedLiteral(t *testing.T) {
	got := TypedLiteral("2024-03-01T10:00:00.123456Z", "http://www.w3.org/2001/XMLSchema#dateTime").String()
	want := `"2024-03-01T10:00:00.123456Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`
	if got != want {
		t.Errorf("TypedLiteral = %s, ожидался %s", got, want)
	}

	escaped := TypedLiteral(`a"b`, "http://www.w3.org/2001/XMLSchema#string").String()
	if escaped != `"a\"b"^^<http://www.w3.org/2001/XMLSchema#string>` {
		t.Errorf("экранирование: %s", escaped)
	}
}
