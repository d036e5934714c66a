// query.go — построение текста SPARQL-запросов.
// Любое значение попадает в текст запроса только как Term, а Term создаётся
// только конструкторами этого пакета, которые экранируют или проверяют значение.
package sparql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bigkaa/bbcdr-report-service/internal/domain/vocab"
)

// ErrInvalidIRI — строка не может быть использована как IRI.
var ErrInvalidIRI = errors.New("недопустимый IRI")

// Term — фрагмент запроса (IRI, литерал или переменная), безопасный для подстановки.
type Term struct {
	s string
}

// String возвращает сериализованный терм.
func (t Term) String() string {
	return t.s
}

// IRI возвращает терм <iri>.
// Пустая строка, пробельные и управляющие символы, а также символы <>"{}|^`\ запрещены.
func IRI(raw string) (Term, error) {
	if raw == "" {
		return Term{}, fmt.Errorf("%w: пустая строка", ErrInvalidIRI)
	}
	for _, r := range raw {
		if r <= 0x20 {
			return Term{}, fmt.Errorf("%w: управляющий символ %q", ErrInvalidIRI, r)
		}
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
			return Term{}, fmt.Errorf("%w: символ %q", ErrInvalidIRI, r)
		}
	}
	return Term{s: "<" + raw + ">"}, nil
}

// MustIRI — IRI для констант словаря. Паникует на недопустимом значении.
func MustIRI(raw string) Term {
	t, err := IRI(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// literalEscaper экранирует строковый литерал SPARQL (STRING_LITERAL2).
var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

// String возвращает экранированный строковый литерал "...".
func String(s string) Term {
	return Term{s: `"` + literalEscaper.Replace(s) + `"`}
}

// Strings возвращает литералы для списка строк.
func Strings(values []string) []Term {
	terms := make([]Term, 0, len(values))
	for _, v := range values {
		terms = append(terms, String(v))
	}
	return terms
}

// DateTimeLayout — формат xsd:dateTime, в котором сервис пишет метки времени (UTC, миллисекунды).
const DateTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DateTime возвращает типизированный литерал xsd:dateTime.
func DateTime(t time.Time) Term {
	return Term{s: `"` + t.UTC().Format(DateTimeLayout) + `"^^<` + vocab.XSDDateTime + `>`}
}

// TypedLiteral возвращает литерал "lexical"^^<datatype> без нормализации значения.
// Нужен, когда литерал должен совпасть с уже хранящимся побайтно.
func TypedLiteral(lexical, datatype string) Term {
	return Term{s: `"` + literalEscaper.Replace(lexical) + `"^^` + MustIRI(datatype).s}
}

var varName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Var возвращает переменную ?name. Имена задаются в коде, поэтому недопустимое имя — паника.
func Var(name string) Term {
	if !varName.MatchString(name) {
		panic(fmt.Sprintf("недопустимое имя переменной SPARQL: %q", name))
	}
	return Term{s: "?" + name}
}

// List соединяет термы через запятую (для FILTER ... IN (...)).
func List(terms []Term) Term {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, t.s)
	}
	return Term{s: strings.Join(parts, ", ")}
}

// Format подставляет термы в шаблон через %s.
// Шаблоны — константы в коде; внешние данные приходят только как Term.
func Format(format string, args ...Term) string {
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a.s
	}
	return fmt.Sprintf(format, vals...)
}

// Prologue возвращает блок PREFIX для всех словарей сервиса.
func Prologue() string {
	var b strings.Builder
	for _, p := range vocab.Prefixes {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", p.Name, p.IRI)
	}
	return b.String()
}
