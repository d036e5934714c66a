// report.go — сервис отчётов BBCDR.
// Координирует repository (разрешение файлов и статуса, запись, проверочное
// чтение после изменения) и Prometheus-метрики.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/bbcdr-report-service/internal/domain/model"
	"github.com/bigkaa/bbcdr-report-service/internal/repository"
)

// Ошибки сервисного слоя.
var (
	// ErrNotFound — отчёт не найден.
	ErrNotFound = errors.New("отчёт не найден")
	// ErrInvalidStatus — статус документа с указанным uuid не существует.
	ErrInvalidStatus = errors.New("неизвестный статус документа")
	// ErrConflict — отчёт изменён параллельным запросом, изменение не применено.
	ErrConflict = errors.New("отчёт изменён параллельно")
)

// Prometheus-метрики операций с отчётами.
var reportOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bbcdr_report_operations_total",
	Help: "Общее количество операций с отчётами (по операции и результату).",
}, []string{"operation", "result"})

// ReportService — создание и изменение отчётов.
type ReportService struct {
	reports repository.ReportRepository
	baseIRI string
	draft   model.StatusRef
	logger  *slog.Logger

	// newID и now подменяются в тестах
	newID func() string
	now   func() time.Time
}

// NewReportService создаёт сервис отчётов.
// baseIRI — префикс IRI новых отчётов (MU_BASE_IRI), draft задаёт статус по умолчанию.
func NewReportService(
	reports repository.ReportRepository,
	baseIRI string,
	draft model.StatusRef,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		reports: reports,
		baseIRI: strings.TrimSuffix(baseIRI, "/") + "/",
		draft:   draft,
		logger:  logger.With(slog.String("component", "report_service")),
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Create создаёт отчёт от имени пользователя сессии.
// Несуществующие файлы отбрасываются без ошибки; без связи status
// используется статус по умолчанию.
func (s *ReportService) Create(ctx context.Context, session *model.Session, rels model.Relationships) (*model.Report, error) {
	report, err := s.create(ctx, session, rels)
	if err != nil {
		reportOperationsTotal.WithLabelValues("create", resultLabel(err)).Inc()
		return nil, err
	}
	reportOperationsTotal.WithLabelValues("create", "ok").Inc()
	return report, nil
}

func (s *ReportService) create(ctx context.Context, session *model.Session, rels model.Relationships) (*model.Report, error) {
	status := s.draft
	if rels.HasStatus {
		resolved, err := s.resolveStatus(ctx, rels.StatusID)
		if err != nil {
			return nil, err
		}
		status = *resolved
	}

	files, err := s.reports.ResolveFiles(ctx, rels.FileIDs)
	if err != nil {
		return nil, fmt.Errorf("разрешение файлов: %w", err)
	}

	id := s.newID()
	now := s.timestamp()
	report := &model.Report{
		ID:             id,
		IRI:            s.baseIRI + id,
		Created:        now,
		Modified:       now,
		Status:         status,
		Subject:        session.Group,
		LastModifiedBy: session.User,
		Files:          files,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("создание отчёта: %w", err)
	}

	s.logger.Info("Отчёт создан",
		slog.String("report_id", id),
		slog.Int("files", len(files)),
		slog.String("status", status.UUID),
		slog.String("user_id", session.UserID),
	)
	return report, nil
}

// Update применяет PATCH к отчёту id от имени пользователя сессии.
// modified, subject и lastModifiedBy меняются всегда, files и status —
// только если связь передана. После записи отчёт перечитывается: если
// записанные значения не видны, возвращается ErrConflict.
func (s *ReportService) Update(ctx context.Context, id string, session *model.Session, rels model.Relationships) (*model.Report, error) {
	report, err := s.update(ctx, id, session, rels)
	if err != nil {
		reportOperationsTotal.WithLabelValues("update", resultLabel(err)).Inc()
		return nil, err
	}
	reportOperationsTotal.WithLabelValues("update", "ok").Inc()
	return report, nil
}

func (s *ReportService) update(ctx context.Context, id string, session *model.Session, rels model.Relationships) (*model.Report, error) {
	current, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение отчёта: %w", err)
	}

	patch := model.ReportUpdate{
		Modified:       s.nextModified(current.Modified),
		Subject:        session.Group,
		LastModifiedBy: session.User,
	}

	if rels.HasStatus {
		status, err := s.resolveStatus(ctx, rels.StatusID)
		if err != nil {
			return nil, err
		}
		patch.Status = status
	}

	var files []model.FileRef
	if rels.HasFiles {
		files, err = s.reports.ResolveFiles(ctx, rels.FileIDs)
		if err != nil {
			return nil, fmt.Errorf("разрешение файлов: %w", err)
		}
		patch.Files = &files
	} else {
		files, err = s.reports.ListFiles(ctx, current.IRI)
		if err != nil {
			return nil, fmt.Errorf("получение файлов отчёта: %w", err)
		}
	}

	if err := s.reports.Update(ctx, current, patch); err != nil {
		return nil, fmt.Errorf("обновление отчёта: %w", err)
	}

	if err := s.verify(ctx, id, patch); err != nil {
		return nil, err
	}

	result := &model.Report{
		ID:             current.ID,
		IRI:            current.IRI,
		Created:        current.Created,
		Modified:       patch.Modified,
		Status:         current.Status,
		Subject:        patch.Subject,
		LastModifiedBy: patch.LastModifiedBy,
		Files:          files,
	}
	if patch.Status != nil {
		result.Status = *patch.Status
	}

	s.logger.Info("Отчёт изменён",
		slog.String("report_id", id),
		slog.Bool("files_patched", rels.HasFiles),
		slog.Bool("status_patched", rels.HasStatus),
		slog.String("user_id", session.UserID),
	)
	return result, nil
}

// verify перечитывает отчёт и сравнивает его с только что записанными значениями.
// Условный DELETE/INSERT ничего не меняет, если отчёт успел измениться
// между чтением и записью. Гонку это сужает, но не устраняет: запись другого
// запроса между update и verify даёт 409 при уже применённом изменении, а два
// PATCH одного пользователя с одинаковым modified оба проходят проверку.
func (s *ReportService) verify(ctx context.Context, id string, patch model.ReportUpdate) error {
	stored, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrConflict
		}
		return fmt.Errorf("проверка обновления отчёта: %w", err)
	}
	if !stored.Modified.Equal(patch.Modified) || stored.LastModifiedBy != patch.LastModifiedBy {
		s.logger.Warn("Изменение отчёта не применено: отчёт изменён параллельно",
			slog.String("report_id", id),
			slog.Time("expected_modified", patch.Modified),
			slog.Time("stored_modified", stored.Modified),
		)
		return ErrConflict
	}
	return nil
}

// resolveStatus разрешает uuid статуса документа.
func (s *ReportService) resolveStatus(ctx context.Context, statusID string) (*model.StatusRef, error) {
	if statusID == "" {
		return nil, ErrInvalidStatus
	}
	status, err := s.reports.ResolveStatus(ctx, statusID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, statusID)
		}
		return nil, fmt.Errorf("разрешение статуса: %w", err)
	}
	return status, nil
}

// timestamp — текущее время с точностью хранилища (миллисекунды, UTC).
func (s *ReportService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// nextModified возвращает новое значение modified, строго большее текущего.
func (s *ReportService) nextModified(current time.Time) time.Time {
	now := s.timestamp()
	if !now.After(current) {
		return current.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return now
}

// resultLabel — значение лейбла result для метрик.
func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
