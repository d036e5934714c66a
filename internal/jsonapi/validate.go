// Пакет jsonapi — структурная проверка тел запросов JSON:API и сборка
// документа отчёта для ответа.
package jsonapi

import "github.com/bigkaa/bbcdr-report-service/internal/domain/model"

// Типы ресурсов JSON:API.
const (
	TypeReports       = "bbcdr-reports"
	TypeLegacyReports = "bbcdr-rapporten"
	TypeFiles         = "files"
	TypeStatuses      = "document-statuses"
	TypeUsers         = "gebruikers"
	TypeGroups        = "bestuurseenheden"
)

// HasValidCreateBody проверяет тело запроса создания:
// data есть, data.type равен resourceType, есть data.relationships и
// relationships.files. Список files.data может быть пустым, но если он
// задан, это должен быть массив. Связь status, если передана, должна
// содержать объект в data.
func HasValidCreateBody(body map[string]any, resourceType string) bool {
	data, ok := baseData(body, resourceType)
	if !ok {
		return false
	}
	rels, ok := data["relationships"].(map[string]any)
	if !ok {
		return false
	}
	files, ok := rels["files"].(map[string]any)
	if !ok {
		return false
	}
	if v, present := files["data"]; present && v != nil {
		if _, isList := v.([]any); !isList {
			return false
		}
	}
	return hasValidStatus(rels)
}

// HasValidPatchBody проверяет тело запроса изменения:
// базовая проверка (data и data.type), непустой data.id, relationships.files.data —
// массив (если связь files передана), relationships.status.data — объект
// (если связь status передана).
func HasValidPatchBody(body map[string]any, resourceType string) bool {
	data, ok := baseData(body, resourceType)
	if !ok {
		return false
	}
	if id, _ := data["id"].(string); id == "" {
		return false
	}

	raw, present := data["relationships"]
	if !present || raw == nil {
		return true
	}
	rels, ok := raw.(map[string]any)
	if !ok {
		return false
	}

	if v, present := rels["files"]; present {
		files, ok := v.(map[string]any)
		if !ok {
			return false
		}
		if _, isList := files["data"].([]any); !isList {
			return false
		}
	}

	return hasValidStatus(rels)
}

// hasValidStatus проверяет связь status: если она есть, status.data должен быть
// объектом. Строка или массив в data иначе были бы молча проигнорированы.
func hasValidStatus(rels map[string]any) bool {
	v, present := rels["status"]
	if !present {
		return true
	}
	status, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = status["data"].(map[string]any)
	return ok
}

// baseData возвращает body.data, если его тип равен resourceType.
func baseData(body map[string]any, resourceType string) (map[string]any, bool) {
	if body == nil {
		return nil, false
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		return nil, false
	}
	if t, _ := data["type"].(string); t != resourceType {
		return nil, false
	}
	return data, true
}

// ParseRelationships извлекает связи files и status из уже проверенного тела.
// Элементы files.data без строкового id пропускаются.
func ParseRelationships(body map[string]any) model.Relationships {
	var out model.Relationships

	data, _ := body["data"].(map[string]any)
	rels, _ := data["relationships"].(map[string]any)
	if rels == nil {
		return out
	}

	if files, ok := rels["files"].(map[string]any); ok {
		out.HasFiles = true
		out.FileIDs = []string{}
		items, _ := files["data"].([]any)
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := obj["id"].(string); ok && id != "" {
				out.FileIDs = append(out.FileIDs, id)
			}
		}
	}

	if status, ok := rels["status"].(map[string]any); ok {
		if obj, ok := status["data"].(map[string]any); ok {
			out.HasStatus = true
			out.StatusID, _ = obj["id"].(string)
		}
	}
	return out
}
