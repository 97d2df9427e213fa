package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/audioscribe/internal/audio/domain"
	"github.com/romariotrain/audioscribe/internal/audio/models"
	"github.com/romariotrain/audioscribe/internal/audio/repository"
	"github.com/romariotrain/audioscribe/internal/audio/storage"
	"github.com/romariotrain/audioscribe/internal/storage/postgres"
)

type Service struct {
	repo   repository.AudioRepository
	store  *storage.Store
	outbox *postgres.OutboxRepo // nil = очередь выключена (QUEUE_ENABLED=false)
	clock  func() time.Time
	logger zerolog.Logger
}

func New(repo repository.AudioRepository, store *storage.Store, outbox *postgres.OutboxRepo, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		outbox: outbox,
		clock:  time.Now,
		logger: logger.With().Str("component", "audio_service").Logger(),
	}
}

// Upload persists the byte stream under <root>/<model>/<relative_path> and
// creates exactly one metadata record referencing it.
//
// Порядок строго диск → БД: если запись на диск не удалась, БД не трогаем;
// если упала вставка в БД, на диске остаётся осиротевший файл (принятое
// ограничение, разгребается оператором).
func (s *Service) Upload(ctx context.Context, model models.WhisperModel, relativePath, filename string, language *string, content io.Reader) (*models.AudioFile, error) {
	if filename == "" {
		return nil, models.E(models.KindValidation, "filename is empty")
	}
	if err := storage.ValidateRelativePath(relativePath); err != nil {
		return nil, err
	}
	relDir := storage.NormalizeRelativePath(relativePath)

	filePath, err := s.store.Save(model, relDir, filename, content)
	if err != nil {
		return nil, err
	}

	a := &models.AudioFile{
		Filename:         filename,
		FilePath:         filePath,
		FileLanguage:     language,
		UploadTime:       s.clock().UTC(),
		StatusProcessing: models.StatusPending,
		WhisperModel:     model,
	}

	if err := s.createWithEvent(ctx, a); err != nil {
		// Файл уже на диске, компенсирующего удаления нет.
		s.logger.Warn().Err(err).Str("path", filePath).Msg("record insert failed, file left on disk")
		return nil, err
	}

	s.logger.Info().Int64("id", a.ID).Str("path", a.FilePath).Msg("audio file uploaded")
	return a, nil
}

func (s *Service) createWithEvent(ctx context.Context, a *models.AudioFile) error {
	if s.outbox == nil {
		return s.repo.Create(ctx, a)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // откатится, если не дошли до Commit

	if err := s.repo.CreateTx(ctx, tx, a); err != nil {
		return err
	}

	event := models.NewAudioFileUploaded(a.ID, a.FilePath, a.WhisperModel)
	if err := s.outbox.Add(ctx, tx, event); err != nil {
		return fmt.Errorf("add outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get returns a record by id, passing through models.ErrNotFound so the
// transport layer can map it to HTTP.
func (s *Service) Get(ctx context.Context, id int64) (*models.AudioFile, error) {
	if id <= 0 {
		return nil, models.ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all records. Пагинации и фильтров по контракту нет.
func (s *Service) List(ctx context.Context) ([]*models.AudioFile, error) {
	return s.repo.List(ctx)
}

// Download opens the stored file for the given record.
func (s *Service) Download(ctx context.Context, id int64) (*models.AudioFile, io.ReadCloser, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.store.Open(a.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return a, f, nil
}

// Delete removes the backing file (best-effort, missing file is fine) and
// the record. Returns models.ErrNotFound when there was no record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.RemoveFile(a.FilePath); err != nil {
		return err
	}

	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		// Гонка двух параллельных удалений: второе сообщает not found.
		return models.ErrNotFound
	}

	s.logger.Info().Int64("id", id).Str("path", a.FilePath).Msg("audio file deleted")
	return nil
}

// DeleteDirectory removes the whole <model>/<relative_path> subtree from
// disk and returns the absolute path removed. Записи в БД под удалённым
// поддеревом не трогаются и остаются висячими.
func (s *Service) DeleteDirectory(ctx context.Context, model models.WhisperModel, relativePath string) (string, error) {
	if err := storage.ValidateRelativePath(relativePath); err != nil {
		return "", err
	}
	relDir := storage.NormalizeRelativePath(relativePath)
	return s.store.RemoveTree(model, relDir)
}

func toDomainStatus(st models.Status) (domain.Status, error) {
	switch st {
	case models.StatusPending:
		return domain.Pending, nil
	case models.StatusProcessing:
		return domain.Processing, nil
	case models.StatusDone:
		return domain.Done, nil
	case models.StatusError:
		return domain.Error, nil
	default:
		return "", fmt.Errorf("unknown status: %s", st)
	}
}

// ChangeStatus переводит запись по жизненному циклу обработки и проставляет
// таймстемпы: processing -> start_processing_at, done/error ->
// finished_processing_at (+ transcript или error_processing).
func (s *Service) ChangeStatus(ctx context.Context, id int64, to models.Status, transcript, processingErr *string) (*models.AudioFile, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fromDom, err := toDomainStatus(a.StatusProcessing)
	if err != nil {
		return nil, err
	}
	toDom, err := toDomainStatus(to)
	if err != nil {
		return nil, models.E(models.KindValidation, err.Error())
	}
	if err := domain.ValidateTransition(fromDom, toDom); err != nil {
		return nil, models.E(models.KindValidation, err.Error())
	}

	if a.StatusProcessing == to {
		return a, nil
	}

	now := s.clock().UTC()
	from := a.StatusProcessing
	a.StatusProcessing = to
	switch to {
	case models.StatusProcessing:
		a.StartProcessingAt = &now
	case models.StatusDone:
		a.FinishedProcessingAt = &now
		if transcript != nil {
			a.Transcript = transcript
		}
	case models.StatusError:
		a.FinishedProcessingAt = &now
		if processingErr != nil {
			a.ErrorProcessing = processingErr
		}
	}

	updated, err := s.updateWithEvent(ctx, a, from, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("processing status changed")
	return updated, nil
}

func (s *Service) updateWithEvent(ctx context.Context, a *models.AudioFile, from, to models.Status) (*models.AudioFile, error) {
	if s.outbox == nil {
		return s.repo.Update(ctx, a)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	updated, err := s.repo.UpdateTx(ctx, tx, a)
	if err != nil {
		return nil, err
	}

	event := models.NewAudioStatusChanged(a.ID, from, to)
	if err := s.outbox.Add(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("add outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}
