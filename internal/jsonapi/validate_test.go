package jsonapi

import (
	"encoding/json"
	"slices"
	"testing"
)

// parse разбирает JSON в map так же, как это делает обработчик.
func parse(t *testing.T, raw string) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("некорректный JSON в тесте: %v", err)
	}
	return body
}

// TestHasValidCreateBody проверяет структурную проверку тела создания.
func TestHasValidCreateBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"пустой список файлов", `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":[]}}}}`, true},
		{"файлы", `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":[{"type":"files","id":"f-1"}]}}}}`, true},
		{"файлы без data", `{"data":{"type":"bbcdr-reports","relationships":{"files":{}}}}`, true},
		{"со статусом", `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":[]},"status":{"data":{"id":"concept"}}}}}`, true},
		{"status.data строка", `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":[]},"status":{"data":"concept"}}}}`, false},
		{"status.data null", `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":[]},"status":{"data":null}}}}`, false},
		{"нет data", `{}`, false},
		{"data null", `{"data":null}`, false},
		{"data не объект", `{"data":[]}`, false},
		{"неверный тип", `{"data":{"type":"reports","relationships":{"files":{"data":[]}}}}`, false},
		{"нет типа", `{"data":{"relationships":{"files":{"data":[]}}}}`, false},
		{"нет relationships", `{"data":{"type":"bbcdr-reports"}}`, false},
		{"нет files", `{"data":{"type":"bbcdr-reports","relationships":{}}}`, false},
		{"files.data не массив", `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":"f-1"}}}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasValidCreateBody(parse(t, tt.body), TypeReports); got != tt.want {
				t.Errorf("HasValidCreateBody = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

// TestHasValidCreateBody_Legacy проверяет устаревшее имя типа.
func TestHasValidCreateBody_Legacy(t *testing.T) {
	body := parse(t, `{"data":{"type":"bbcdr-rapporten","relationships":{"files":{"data":[]}}}}`)

	if !HasValidCreateBody(body, TypeLegacyReports) {
		t.Error("тело с типом bbcdr-rapporten должно быть допустимо на устаревшем маршруте")
	}
	if HasValidCreateBody(body, TypeReports) {
		t.Error("тело с типом bbcdr-rapporten не должно быть допустимо на основном маршруте")
	}
}

// TestHasValidCreateBody_Nil проверяет nil-тело.
func TestHasValidCreateBody_Nil(t *testing.T) {
	if HasValidCreateBody(nil, TypeReports) {
		t.Error("nil-тело должно быть недопустимым")
	}
	if HasValidPatchBody(nil, TypeReports) {
		t.Error("nil-тело должно быть недопустимым")
	}
}

// TestHasValidPatchBody проверяет структурную проверку тела изменения.
func TestHasValidPatchBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"только id", `{"data":{"type":"bbcdr-reports","id":"r-1"}}`, true},
		{"пустые relationships", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{}}}`, true},
		{"файлы", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"files":{"data":[{"id":"f-1"}]}}}}`, true},
		{"пустые файлы", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"files":{"data":[]}}}}`, true},
		{"статус", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"status":{"data":{"id":"concept"}}}}}`, true},
		{"нет id", `{"data":{"type":"bbcdr-reports","relationships":{}}}`, false},
		{"пустой id", `{"data":{"type":"bbcdr-reports","id":""}}`, false},
		{"id не строка", `{"data":{"type":"bbcdr-reports","id":42}}`, false},
		{"нет типа", `{"data":{"id":"r-1"}}`, false},
		{"files.data не массив", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"files":{"data":{"id":"f-1"}}}}}`, false},
		{"files.data null", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"files":{"data":null}}}}`, false},
		{"status.data null", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"status":{"data":null}}}}`, false},
		{"status без data", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"status":{}}}}`, false},
		{"status.data строка", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"status":{"data":"concept"}}}}`, false},
		{"status.data массив", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"status":{"data":[{"id":"concept"}]}}}}`, false},
		{"status не объект", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":{"status":"concept"}}}`, false},
		{"relationships не объект", `{"data":{"type":"bbcdr-reports","id":"r-1","relationships":[]}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasValidPatchBody(parse(t, tt.body), TypeReports); got != tt.want {
				t.Errorf("HasValidPatchBody = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

// TestParseRelationships проверяет извлечение связей.
func TestParseRelationships(t *testing.T) {
	body := parse(t, `{"data":{"type":"bbcdr-reports","relationships":{
		"files":{"data":[{"type":"files","id":"f-1"},{"type":"files"},"junk",{"id":"f-2"}]},
		"status":{"data":{"type":"document-statuses","id":"concept"}}}}}`)

	rels := ParseRelationships(body)
	if !rels.HasFiles {
		t.Error("HasFiles = false")
	}
	if !slices.Equal(rels.FileIDs, []string{"f-1", "f-2"}) {
		t.Errorf("FileIDs = %v", rels.FileIDs)
	}
	if !rels.HasStatus || rels.StatusID != "concept" {
		t.Errorf("status = %v/%q", rels.HasStatus, rels.StatusID)
	}
}

// TestParseRelationships_Absent проверяет отсутствующие связи.
func TestParseRelationships_Absent(t *testing.T) {
	rels := ParseRelationships(parse(t, `{"data":{"type":"bbcdr-reports","id":"r-1"}}`))
	if rels.HasFiles || rels.HasStatus {
		t.Errorf("rels = %+v, связи не ожидались", rels)
	}

	rels = ParseRelationships(parse(t, `{"data":{"type":"bbcdr-reports","relationships":{"files":{"data":[]}}}}`))
	if !rels.HasFiles || rels.FileIDs == nil || len(rels.FileIDs) != 0 {
		t.Errorf("rels = %+v, ожидался пустой список файлов", rels)
	}
}
