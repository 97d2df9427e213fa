package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) Create(ctx context.Context, a *models.AudioFile) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *RepoMock) GetByID(ctx context.Context, id int64) (*models.AudioFile, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.AudioFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) List(ctx context.Context) ([]*models.AudioFile, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.AudioFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) Update(ctx context.Context, a *models.AudioFile) (*models.AudioFile, error) {
	args := m.Called(ctx, a)
	if rf, ok := args.Get(0).(func(context.Context, *models.AudioFile) (*models.AudioFile, error)); ok {
		return rf(ctx, a)
	}
	if v := args.Get(0); v != nil {
		return v.(*models.AudioFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*sqlx.Tx), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) CreateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *RepoMock) UpdateTx(ctx context.Context, tx *sqlx.Tx, a *models.AudioFile) (*models.AudioFile, error) {
	args := m.Called(ctx, tx, a)
	if v := args.Get(0); v != nil {
		return v.(*models.AudioFile), args.Error(1)
	}
	return nil, args.Error(1)
}
