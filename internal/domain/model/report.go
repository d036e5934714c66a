// Пакет model — доменные модели Report Service.
// Report описывает отчёт BBCDR, Session — сессию пользователя, FileRef и
// StatusRef ссылаются на внешние ресурсы хранилища.
package model

import "time"

// Session — аутентифицированная сессия, найденная по mu-session-id.
// Сервис только читает сессии: создаются они внешним login-сервисом.
type Session struct {
	// User — IRI пользователя
	User string
	// Group — IRI группы (bestuurseenheid)
	Group string
	// UserID — uuid пользователя
	UserID string
	// GroupID — uuid группы
	GroupID string
}

// FileRef — ссылка на существующий ресурс nfo:FileDataObject.
type FileRef struct {
	IRI  string
	UUID string
}

// StatusRef — ссылка на концепт статуса документа.
type StatusRef struct {
	IRI  string
	UUID string
}

// Report — отчёт BBCDR.
type Report struct {
	// ID — uuid отчёта, единственный идентификатор, видимый клиенту
	ID string
	// IRI — IRI отчёта в хранилище (наружу не отдаётся)
	IRI string
	// Created — время создания, не меняется
	Created time.Time
	// Modified — время последнего изменения
	Modified time.Time
	// ModifiedLexical — modified в лексической форме хранилища (пусто для нового отчёта)
	ModifiedLexical string
	// Status — текущий статус документа
	Status StatusRef
	// Subject — IRI группы-владельца
	Subject string
	// LastModifiedBy — IRI пользователя, изменившего отчёт последним
	LastModifiedBy string
	// Files — прикреплённые файлы (неупорядоченное множество)
	Files []FileRef
}

// FileIDs возвращает uuid прикреплённых файлов.
func (r *Report) FileIDs() []string {
	ids := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		ids = append(ids, f.UUID)
	}
	return ids
}

// ReportUpdate — изменения, применяемые к отчёту при PATCH.
// Modified, Subject и LastModifiedBy меняются всегда.
// Files и Status — только если соответствующая связь пришла в запросе (не nil).
type ReportUpdate struct {
	Modified       time.Time
	Subject        string
	LastModifiedBy string
	// Files — новый набор файлов (полная замена); при nil связь не трогается
	Files *[]FileRef
	// Status — новый статус; при nil статус не меняется
	Status *StatusRef
}

// Relationships — связи, извлечённые из тела JSON:API запроса.
type Relationships struct {
	// FileIDs — uuid файлов из relationships.files.data
	FileIDs []string
	// HasFiles — связь files присутствует в запросе
	HasFiles bool
	// StatusID — uuid статуса из relationships.status.data.id
	StatusID string
	// HasStatus — связь status присутствует в запросе
	HasStatus bool
}
