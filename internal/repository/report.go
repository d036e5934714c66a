package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
	"github.com/bigkaa/bbcdr-report-service/internal/domain/vocab"
	"github.com/bigkaa/bbcdr-report-service/internal/sparql"
)

// ReportRepository — чтение и запись отчётов BBCDR в triple store.
type ReportRepository interface {
	// Create записывает новый отчёт одним SPARQL Update.
	// Связи nie:hasPart создаются только для файлов, существующих на момент записи.
	Create(ctx context.Context, report *model.Report) error
	// GetByID возвращает скалярные атрибуты отчёта (без файлов) или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Report, error)
	// ListFiles возвращает файлы, связанные с отчётом через nie:hasPart.
	ListFiles(ctx context.Context, reportIRI string) ([]model.FileRef, error)
	// ResolveFiles оставляет из списка uuid только существующие файлы.
	ResolveFiles(ctx context.Context, ids []string) ([]model.FileRef, error)
	// ResolveStatus возвращает концепт статуса документа по uuid или ErrNotFound.
	ResolveStatus(ctx context.Context, id string) (*model.StatusRef, error)
	// Update применяет дифференциальное изменение отчёта одним
	// DELETE/INSERT/WHERE. WHERE привязан к текущим modified, subject и
	// lastModifiedBy, поэтому при конкурентном изменении запрос ничего не меняет.
	Update(ctx context.Context, current *model.Report, update model.ReportUpdate) error
}

// reportRepo — реализация ReportRepository поверх Store.
type reportRepo struct {
	store Store
	graph sparql.Term
}

// NewReportRepository создаёт репозиторий отчётов.
// graph — граф приложения, в котором живут отчёты и файлы.
func NewReportRepository(store Store, graph sparql.Term) ReportRepository {
	return &reportRepo{store: store, graph: graph}
}

// Create записывает отчёт. Атрибуты отчёта вставляются через INSERT DATA,
// файлы — отдельной операцией того же запроса с фильтром существования,
// так что пустой или полностью несуществующий список файлов не мешает созданию.
func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	update, err := buildCreateUpdate(r.graph, report)
	if err != nil {
		return err
	}
	if err := r.store.Update(ctx, update); err != nil {
		return fmt.Errorf("ошибка создания отчёта: %w", err)
	}
	return nil
}

// GetByID возвращает отчёт по uuid или ErrNotFound.
func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	results, err := r.store.Query(ctx, buildGetReportQuery(r.graph, id))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отчёта: %w", err)
	}

	rows := results.Rows()
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	row := rows[0]

	created, err := row.Time("created")
	if err != nil {
		return nil, fmt.Errorf("отчёт %s: %w", id, err)
	}
	modified, err := row.Time("modified")
	if err != nil {
		return nil, fmt.Errorf("отчёт %s: %w", id, err)
	}

	return &model.Report{
		ID:       id,
		IRI:             row.Get("report"),
		Created:         created,
		Modified:        modified,
		ModifiedLexical: row.Get("modified"),
		Status: model.StatusRef{
			IRI:  row.Get("status"),
			UUID: row.Get("statusID"),
		},
		Subject:        row.Get("subject"),
		LastModifiedBy: row.Get("lastModifiedBy"),
	}, nil
}

// ListFiles возвращает файлы отчёта.
func (r *reportRepo) ListFiles(ctx context.Context, reportIRI string) ([]model.FileRef, error) {
	report, err := sparql.IRI(reportIRI)
	if err != nil {
		return nil, fmt.Errorf("IRI отчёта: %w", err)
	}

	results, err := r.store.Query(ctx, buildListFilesQuery(r.graph, report))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения файлов отчёта: %w", err)
	}
	return scanFiles(results), nil
}

// ResolveFiles возвращает существующие файлы из списка uuid.
// Несуществующие uuid молча отбрасываются; пустой список не требует запроса.
func (r *reportRepo) ResolveFiles(ctx context.Context, ids []string) ([]model.FileRef, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []model.FileRef{}, nil
	}

	results, err := r.store.Query(ctx, buildResolveFilesQuery(r.graph, ids))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска файлов: %w", err)
	}
	return scanFiles(results), nil
}

// ResolveStatus возвращает статус документа по uuid.
// Концепты статусов — общий словарь, поэтому поиск идёт без ограничения графом.
func (r *reportRepo) ResolveStatus(ctx context.Context, id string) (*model.StatusRef, error) {
	results, err := r.store.Query(ctx, buildResolveStatusQuery(id))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска статуса: %w", err)
	}

	rows := results.Rows()
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &model.StatusRef{IRI: rows[0].Get("status"), UUID: id}, nil
}

// Update применяет изменения к отчёту.
func (r *reportRepo) Update(ctx context.Context, current *model.Report, update model.ReportUpdate) error {
	q, err := buildUpdateReport(r.graph, current, update)
	if err != nil {
		return err
	}
	if err := r.store.Update(ctx, q); err != nil {
		return fmt.Errorf("ошибка обновления отчёта: %w", err)
	}
	return nil
}

// --- Построение запросов ---

// buildCreateUpdate строит запрос создания отчёта.
func buildCreateUpdate(graph sparql.Term, report *model.Report) (string, error) {
	subject, err := sparql.IRI(report.IRI)
	if err != nil {
		return "", fmt.Errorf("IRI отчёта: %w", err)
	}
	status, err := sparql.IRI(report.Status.IRI)
	if err != nil {
		return "", fmt.Errorf("IRI статуса: %w", err)
	}
	user, err := sparql.IRI(report.LastModifiedBy)
	if err != nil {
		return "", fmt.Errorf("IRI пользователя: %w", err)
	}
	group, err := sparql.IRI(report.Subject)
	if err != nil {
		return "", fmt.Errorf("IRI группы: %w", err)
	}

	var b strings.Builder
	b.WriteString(sparql.Prologue())
	b.WriteString(sparql.Format(`
INSERT DATA {
  GRAPH %s {
    %s a bbcdr:Report ;
       mu:uuid %s ;
       dcterms:created %s ;
       dcterms:modified %s ;
       adms:status %s ;
       ext:lastModifiedBy %s ;
       dcterms:subject %s .
  }
}`,
		graph, subject,
		sparql.String(report.ID),
		sparql.DateTime(report.Created),
		sparql.DateTime(report.Modified),
		status, user, group,
	))

	fileIDs := uniqueIDs(report.FileIDs())
	if len(fileIDs) > 0 {
		b.WriteString(" ;\n")
		b.WriteString(sparql.Format(`
INSERT {
  GRAPH %s {
    %s nie:hasPart ?file .
  }
}
WHERE {
  GRAPH %s {
    ?file a nfo:FileDataObject ;
          mu:uuid ?uuid .
    FILTER(?uuid IN (%s))
  }
}`, graph, subject, graph, sparql.List(sparql.Strings(fileIDs))))
	}

	return b.String(), nil
}

// buildGetReportQuery строит SELECT скалярных атрибутов отчёта.
func buildGetReportQuery(graph sparql.Term, id string) string {
	return sparql.Prologue() + sparql.Format(`
SELECT ?report ?created ?modified ?status ?statusID ?lastModifiedBy ?subject
WHERE {
  GRAPH %s {
    ?report a bbcdr:Report ;
            mu:uuid %s ;
            dcterms:created ?created ;
            dcterms:modified ?modified ;
            adms:status ?status ;
            ext:lastModifiedBy ?lastModifiedBy ;
            dcterms:subject ?subject .
  }
  OPTIONAL { ?status mu:uuid ?statusID . }
}
LIMIT 1`, graph, sparql.String(id))
}

// buildListFilesQuery строит SELECT файлов отчёта.
func buildListFilesQuery(graph, report sparql.Term) string {
	return sparql.Prologue() + sparql.Format(`
SELECT DISTINCT ?file ?uuid
WHERE {
  GRAPH %s {
    %s nie:hasPart ?file .
    ?file mu:uuid ?uuid .
  }
}`, graph, report)
}

// buildResolveFilesQuery строит SELECT существующих файлов по списку uuid.
func buildResolveFilesQuery(graph sparql.Term, ids []string) string {
	return sparql.Prologue() + sparql.Format(`
SELECT DISTINCT ?file ?uuid
WHERE {
  GRAPH %s {
    ?file a nfo:FileDataObject ;
          mu:uuid ?uuid .
    FILTER(?uuid IN (%s))
  }
}`, graph, sparql.List(sparql.Strings(ids)))
}

// buildResolveStatusQuery строит SELECT концепта статуса по uuid.
// Ресурс другого класса с тем же uuid (файл, отчёт) статусом не считается.
func buildResolveStatusQuery(id string) string {
	return sparql.Prologue() + sparql.Format(`
SELECT ?status
WHERE {
  ?status a %s ;
          mu:uuid %s .
}
LIMIT 1`, sparql.MustIRI(vocab.ClassDocumentStatus), sparql.String(id))
}

// buildUpdateReport строит дифференциальный DELETE/INSERT/WHERE.
// modified, subject и lastModifiedBy заменяются всегда; nie:hasPart — только
// если update.Files задан (полная замена); adms:status — только если задан update.Status.
func buildUpdateReport(graph sparql.Term, current *model.Report, update model.ReportUpdate) (string, error) {
	report, err := sparql.IRI(current.IRI)
	if err != nil {
		return "", fmt.Errorf("IRI отчёта: %w", err)
	}
	oldSubject, err := sparql.IRI(current.Subject)
	if err != nil {
		return "", fmt.Errorf("IRI текущей группы: %w", err)
	}
	oldUser, err := sparql.IRI(current.LastModifiedBy)
	if err != nil {
		return "", fmt.Errorf("IRI текущего пользователя: %w", err)
	}
	newSubject, err := sparql.IRI(update.Subject)
	if err != nil {
		return "", fmt.Errorf("IRI группы: %w", err)
	}
	newUser, err := sparql.IRI(update.LastModifiedBy)
	if err != nil {
		return "", fmt.Errorf("IRI пользователя: %w", err)
	}

	var deletes, inserts, optionals []string

	deletes = append(deletes, sparql.Format(
		"    %s dcterms:modified ?modified ;\n       dcterms:subject %s ;\n       ext:lastModifiedBy %s .",
		report, oldSubject, oldUser))
	inserts = append(inserts, sparql.Format(
		"    %s dcterms:modified %s ;\n       dcterms:subject %s ;\n       ext:lastModifiedBy %s .",
		report, sparql.DateTime(update.Modified), newSubject, newUser))

	if update.Files != nil {
		deletes = append(deletes, sparql.Format("    %s nie:hasPart ?oldFile .", report))
		optionals = append(optionals, sparql.Format("    OPTIONAL { %s nie:hasPart ?oldFile . }", report))

		files := make([]sparql.Term, 0, len(*update.Files))
		for _, f := range *update.Files {
			file, err := sparql.IRI(f.IRI)
			if err != nil {
				return "", fmt.Errorf("IRI файла %s: %w", f.UUID, err)
			}
			files = append(files, file)
		}
		if len(files) > 0 {
			inserts = append(inserts, sparql.Format("    %s nie:hasPart %s .", report, sparql.List(files)))
		}
	}

	if update.Status != nil {
		status, err := sparql.IRI(update.Status.IRI)
		if err != nil {
			return "", fmt.Errorf("IRI статуса: %w", err)
		}
		deletes = append(deletes, sparql.Format("    %s adms:status ?oldStatus .", report))
		optionals = append(optionals, sparql.Format("    OPTIONAL { %s adms:status ?oldStatus . }", report))
		inserts = append(inserts, sparql.Format("    %s adms:status %s .", report, status))
	}

	where := []string{
		sparql.Format(
			"    %s dcterms:modified ?modified ;\n       dcterms:subject %s ;\n       ext:lastModifiedBy %s .",
			report, oldSubject, oldUser),
		sparql.Format("    FILTER(%s = %s)", sparql.Var("modified"), storedModified(current)),
	}
	where = append(where, optionals...)

	graphBlock := func(lines []string) string {
		return sparql.Format("  GRAPH %s {\n", graph) + strings.Join(lines, "\n") + "\n  }"
	}

	return sparql.Prologue() +
		"\nDELETE {\n" + graphBlock(deletes) + "\n}" +
		"\nINSERT {\n" + graphBlock(inserts) + "\n}" +
		"\nWHERE {\n" + graphBlock(where) + "\n}", nil
}

// storedModified возвращает текущее modified в той лексической форме, в которой
// его вернуло хранилище. Значение, записанное другим клиентом, может иметь
// точность выше миллисекунды, и литерал из time.Time с ним бы не совпал.
func storedModified(current *model.Report) sparql.Term {
	if current.ModifiedLexical != "" {
		return sparql.TypedLiteral(current.ModifiedLexical, vocab.XSDDateTime)
	}
	return sparql.DateTime(current.Modified)
}

// scanFiles собирает FileRef из строк ?file ?uuid.
func scanFiles(results *sparql.Results) []model.FileRef {
	rows := results.Rows()
	files := make([]model.FileRef, 0, len(rows))
	for _, row := range rows {
		files = append(files, model.FileRef{IRI: row.Get("file"), UUID: row.Get("uuid")})
	}
	return files
}

// uniqueIDs убирает пустые и повторяющиеся uuid, сохраняя порядок.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
