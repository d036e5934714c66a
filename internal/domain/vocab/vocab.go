// Пакет vocab — IRI словарей, используемых Report Service при работе с triple store.
// Все предикаты и классы, которые сервис читает или пишет, определены здесь —
// это контракт схемы данных с хранилищем.
package vocab

// Пространства имён.
const (
	// MU — базовый словарь mu.semte.ch (uuid ресурсов).
	MU = "http://mu.semte.ch/vocabularies/core/"
	// Ext — расширения mu.semte.ch.
	Ext = "http://mu.semte.ch/vocabularies/ext/"
	// Session — словарь сессий mu-login.
	Session = "http://mu.semte.ch/vocabularies/session/"
	// BBCDR — словарь отчётов BBCDR.
	BBCDR = "http://mu.semte.ch/vocabularies/ext/bbcdr/"
	// FOAF — Friend of a Friend.
	FOAF = "http://xmlns.com/foaf/0.1/"
	// DCTerms — Dublin Core terms.
	DCTerms = "http://purl.org/dc/terms/"
	// ADMS — Asset Description Metadata Schema.
	ADMS = "http://www.w3.org/ns/adms#"
	// NIE — NEPOMUK Information Element.
	NIE = "http://www.semanticdesktop.org/ontologies/2007/01/19/nie#"
	// NFO — NEPOMUK File Ontology.
	NFO = "http://www.semanticdesktop.org/ontologies/2007/03/22/nfo#"
	// XSD — XML Schema datatypes.
	XSD = "http://www.w3.org/2001/XMLSchema#"
)

// Классы.
const (
	ClassReport = BBCDR + "Report"
	ClassFile   = NFO + "FileDataObject"
	// ClassDocumentStatus — концепт статуса документа (concept, definitief, ...).
	ClassDocumentStatus = Ext + "DocumentStatus"
)

// Предикаты.
const (
	UUID           = MU + "uuid"
	HasPart        = NIE + "hasPart"
	Status         = ADMS + "status"
	Created        = DCTerms + "created"
	Modified       = DCTerms + "modified"
	Subject        = DCTerms + "subject"
	LastModifiedBy = Ext + "lastModifiedBy"

	// SessionAccount связывает сессию с аккаунтом.
	SessionAccount = Session + "account"
	// Account связывает пользователя с аккаунтом (используется в обратном направлении).
	Account = FOAF + "account"
	// SessionGroup связывает сессию с группой (bestuurseenheid).
	// Единственный поддерживаемый вариант: session:group и foaf:member не используются.
	SessionGroup = Ext + "sessionGroup"
)

// XSDDateTime — тип литералов created/modified.
const XSDDateTime = XSD + "dateTime"

// Prefixes — префиксы, подставляемые в начало каждого запроса.
// Порядок фиксирован, чтобы текст запросов был детерминированным.
var Prefixes = []struct {
	Name string
	IRI  string
}{
	{"mu", MU},
	{"ext", Ext},
	{"session", Session},
	{"bbcdr", BBCDR},
	{"foaf", FOAF},
	{"dcterms", DCTerms},
	{"adms", ADMS},
	{"nie", NIE},
	{"nfo", NFO},
	{"xsd", XSD},
}
