package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

// audioColumns — единый список столбцов таблицы audio_files для SELECT/RETURNING.
const audioColumns = `id, filename, file_path, file_language, upload_time,
	start_processing_at, finished_processing_at, status_processing,
	error_processing, transcript, whisper_model`

type AudioRepo struct {
	db *sqlx.DB
}

func NewAudioRepo(db *sqlx.DB) *AudioRepo {
	return &AudioRepo{db: db}
}

func (r *AudioRepo) Create(ctx context.Context, a *models.AudioFile) error {
	const q = `
		INSERT INTO audio_files
			(filename, file_path, file_language, upload_time, status_processing, whisper_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := r.db.QueryRowxContext(ctx, q,
		a.Filename, a.FilePath, a.FileLanguage, a.UploadTime, a.StatusProcessing, a.WhisperModel,
	).Scan(&a.ID); err != nil {
		return fmt.Errorf("audio create: %w", err)
	}
	return nil
}

func (r *AudioRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) error {
	const q = `
		INSERT INTO audio_files
			(filename, file_path, file_language, upload_time, status_processing, whisper_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRowxContext(ctx, q,
		a.Filename, a.FilePath, a.FileLanguage, a.UploadTime, a.StatusProcessing, a.WhisperModel,
	).Scan(&a.ID); err != nil {
		return fmt.Errorf("audio create tx: %w", err)
	}
	return nil
}

func (r *AudioRepo) GetByID(ctx context.Context, id int64) (*models.AudioFile, error) {
	q := fmt.Sprintf(`SELECT %s FROM audio_files WHERE id = $1`, audioColumns)

	var a models.AudioFile
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("audio get by id: %w", err)
	}

	return &a, nil
}

func (r *AudioRepo) List(ctx context.Context) ([]*models.AudioFile, error) {
	q := fmt.Sprintf(`SELECT %s FROM audio_files ORDER BY id ASC`, audioColumns)

	var out []*models.AudioFile
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("audio list: %w", err)
	}

	return out, nil
}

func (r *AudioRepo) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM audio_files WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("audio delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("audio delete rows affected: %w", err)
	}

	return n > 0, nil
}

func (r *AudioRepo) Update(ctx context.Context, a *models.AudioFile) (*models.AudioFile, error) {
	q := fmt.Sprintf(`
		UPDATE audio_files
		SET status_processing = $2,
			start_processing_at = $3,
			finished_processing_at = $4,
			error_processing = $5,
			transcript = $6
		WHERE id = $1
		RETURNING %s
	`, audioColumns)

	var out models.AudioFile
	if err := r.db.GetContext(ctx, &out, q,
		a.ID, a.StatusProcessing, a.StartProcessingAt, a.FinishedProcessingAt,
		a.ErrorProcessing, a.Transcript,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("audio update: %w", err)
	}

	return &out, nil
}

func (r *AudioRepo) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

func (r *AudioRepo) UpdateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) (*models.AudioFile, error) {
	q := fmt.Sprintf(`
		UPDATE audio_files
		SET status_processing = $2,
			start_processing_at = $3,
			finished_processing_at = $4,
			error_processing = $5,
			transcript = $6
		WHERE id = $1
		RETURNING %s
	`, audioColumns)

	var out models.AudioFile
	// Вместо r.db используем tx!
	if err := tx.GetContext(ctx, &out, q,
		a.ID, a.StatusProcessing, a.StartProcessingAt, a.FinishedProcessingAt,
		a.ErrorProcessing, a.Transcript,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("audio update tx: %w", err)
	}

	return &out, nil
}
