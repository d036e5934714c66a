// report.go — сборка JSON:API документа отчёта.
package jsonapi

import (
	"slices"
	"time"
)

// MediaType — тип содержимого ответов JSON:API.
const MediaType = "application/vnd.api+json"

// TimeLayout — формат created/modified в ответе (UTC, миллисекунды).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Links — ссылки ресурса или связи.
type Links struct {
	Self string `json:"self"`
}

// Identifier — идентификатор ресурса {type, id}.
type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship — связь с одним ресурсом.
type Relationship struct {
	Links Links      `json:"links"`
	Data  Identifier `json:"data"`
}

// ReportAttributes — атрибуты отчёта.
type ReportAttributes struct {
	Created  string `json:"created"`
	Modified string `json:"modified"`
}

// ReportRelationships — связи отчёта.
// files — массив связей, по одной на файл.
type ReportRelationships struct {
	Files           []Relationship `json:"files"`
	DocumentStatus  Relationship   `json:"documentStatus"`
	Gebruiker       Relationship   `json:"gebruiker"`
	Bestuurseenheid Relationship   `json:"bestuurseenheid"`
}

// Resource — ресурс отчёта.
type Resource struct {
	Type          string              `json:"type"`
	ID            string              `json:"id"`
	Links         Links               `json:"links"`
	Attributes    ReportAttributes    `json:"attributes"`
	Relationships ReportRelationships `json:"relationships"`
}

// Document — документ верхнего уровня.
type Document struct {
	Links Links    `json:"links"`
	Data  Resource `json:"data"`
}

// ErrorDocument — тело ответа с ошибкой.
type ErrorDocument struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
}

// BuildReportResponse собирает документ отчёта.
// Функция детерминирована: uuid файлов сортируются и дедуплицируются,
// поэтому одинаковые наборы дают одинаковый документ.
func BuildReportResponse(id string, created, modified time.Time, fileIDs []string, statusID, userID, groupID string) Document {
	self := Links{Self: "/" + TypeReports + "/" + id}

	ids := slices.Clone(fileIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	files := make([]Relationship, 0, len(ids))
	for _, fid := range ids {
		files = append(files, relationship(TypeFiles, fid))
	}

	return Document{
		Links: self,
		Data: Resource{
			Type:  TypeReports,
			ID:    id,
			Links: self,
			Attributes: ReportAttributes{
				Created:  formatTime(created),
				Modified: formatTime(modified),
			},
			Relationships: ReportRelationships{
				Files:           files,
				DocumentStatus:  relationship(TypeStatuses, statusID),
				Gebruiker:       relationship(TypeUsers, userID),
				Bestuurseenheid: relationship(TypeGroups, groupID),
			},
		},
	}
}

func relationship(resourceType, id string) Relationship {
	return Relationship{
		Links: Links{Self: "/" + resourceType + "/" + id},
		Data:  Identifier{Type: resourceType, ID: id},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
