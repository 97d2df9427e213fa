package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

// MemoryRepository — in-memory реализация для тестов и локальной разработки.
// Транзакции не поддерживает, поэтому пригодна только с выключенным outbox.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*models.AudioFile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		data:   make(map[int64]*models.AudioFile),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, a *models.AudioFile) error {
	if a == nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextID
	r.nextID++

	// Защитная копия, чтобы внешняя сторона не могла мутировать хранимый объект
	cp := *a
	r.data[a.ID] = &cp

	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.AudioFile, error) {
	if id <= 0 {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.AudioFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.AudioFile, 0, len(r.data))
	for _, a := range r.data {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return false, nil
	}
	delete(r.data, id)

	return true, nil
}

func (r *MemoryRepository) Update(ctx context.Context, a *models.AudioFile) (*models.AudioFile, error) {
	if a == nil || a.ID <= 0 {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[a.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *a
	r.data[a.ID] = &cp

	out := cp
	return &out, nil
}

func (r *MemoryRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return nil, errors.New("memory repository: transactions are not supported")
}

func (r *MemoryRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) error {
	return errors.New("memory repository: transactions are not supported")
}

func (r *MemoryRepository) UpdateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) (*models.AudioFile, error) {
	return nil, errors.New("memory repository: transactions are not supported")
}
