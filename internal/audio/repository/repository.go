package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

// AudioRepository — доступ к таблице audio_files.
// Tx-варианты нужны сервису, чтобы коммитить запись и outbox-событие атомарно.
type AudioRepository interface {
	Create(ctx context.Context, a *models.AudioFile) error
	GetByID(ctx context.Context, id int64) (*models.AudioFile, error)
	List(ctx context.Context) ([]*models.AudioFile, error)
	// Delete удаляет запись и сообщает, существовала ли она.
	Delete(ctx context.Context, id int64) (bool, error)
	// Update персистит статус, таймстемпы обработки, ошибку и транскрипт.
	Update(ctx context.Context, a *models.AudioFile) (*models.AudioFile, error)

	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) (*models.AudioFile, error)
}
