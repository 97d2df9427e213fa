package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

func newAudio(filename string) *models.AudioFile {
	return &models.AudioFile{
		Filename:         filename,
		FilePath:         "base/" + filename,
		UploadTime:       time.Now().UTC(),
		StatusProcessing: models.StatusPending,
		WhisperModel:     models.ModelBase,
	}
}

func TestMemory_CreateAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		a := newAudio("a.wav")
		require.NoError(t, r.Create(ctx, a))
		require.False(t, seen[a.ID], "id %d reused", a.ID)
		seen[a.ID] = true
	}
}

func TestMemory_GetByID(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a := newAudio("a.wav")
	require.NoError(t, r.Create(ctx, a))

	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Filename, got.Filename)

	// Мутация возвращённой копии не должна трогать хранилище.
	got.Filename = "mutated"
	again, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.wav", again.Filename)

	_, err = r.GetByID(ctx, 9999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemory_ListEmptyThenN(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	out, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Create(ctx, newAudio("a.wav")))
	}

	out, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Less(t, out[0].ID, out[1].ID)
	assert.Less(t, out[1].ID, out[2].ID)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a := newAudio("a.wav")
	require.NoError(t, r.Create(ctx, a))

	existed, err := r.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	// Повторное удаление сообщает not found, не ошибку.
	existed, err = r.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMemory_Update(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a := newAudio("a.wav")
	require.NoError(t, r.Create(ctx, a))

	a.StatusProcessing = models.StatusProcessing
	now := time.Now().UTC()
	a.StartProcessingAt = &now

	got, err := r.Update(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.StatusProcessing)
	require.NotNil(t, got.StartProcessingAt)

	missing := newAudio("b.wav")
	missing.ID = 9999
	_, err = r.Update(ctx, missing)
	require.ErrorIs(t, err, models.ErrNotFound)
}
