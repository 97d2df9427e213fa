package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

// Store пишет и удаляет файлы под единым корнем загрузок.
// Раскладка на диске: <root>/<model>[/<relative_dir>]/<filename>.
type Store struct {
	root   string
	logger zerolog.Logger
}

func New(root string, logger zerolog.Logger) *Store {
	return &Store{
		root:   root,
		logger: logger.With().Str("component", "storage").Logger(),
	}
}

// Root returns the configured upload root.
func (s *Store) Root() string { return s.root }

// Save writes the full content of r to <root>/<model>/<relDir>/<filename>
// and returns the path relative to the root (the value persisted in the DB).
// relDir must already be normalized (see NormalizeRelativePath).
// Существующий файл с тем же именем перезаписывается: last write wins.
func (s *Store) Save(model models.WhisperModel, relDir, filename string, r io.Reader) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return "", models.E(models.KindValidation, "filename must be a bare name without path separators")
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", models.E(models.KindFileError, "create upload root").Wrap(err)
	}

	var relPath, targetDir string
	if relDir != "" {
		relPath = filepath.Join(string(model), relDir, filename)
		targetDir = filepath.Join(s.root, string(model), relDir)
	} else {
		relPath = filepath.Join(string(model), filename)
		targetDir = filepath.Join(s.root, string(model))
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", models.E(models.KindFileError, "create target directory").Wrap(err)
	}

	dst, err := os.Create(filepath.Join(targetDir, filename))
	if err != nil {
		return "", models.E(models.KindFileError, "create file").Wrap(err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return "", models.E(models.KindFileError, "write file").Wrap(err)
	}
	if err := dst.Close(); err != nil {
		return "", models.E(models.KindFileError, "close file").Wrap(err)
	}

	s.logger.Debug().Str("path", relPath).Msg("file saved")
	return relPath, nil
}

// Open opens a stored file by its DB-relative path, for download.
func (s *Store) Open(relPath string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.root, relPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.ErrNotFound
		}
		return nil, models.E(models.KindFileError, "open file").Wrap(err)
	}
	return f, nil
}

// RemoveFile deletes a stored file by its DB-relative path.
// Отсутствующий файл — не ошибка: удаление идемпотентно для вызывающего.
func (s *Store) RemoveFile(relPath string) error {
	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return models.E(models.KindFileError, "remove file").Wrap(err)
	}
	return nil
}

// RemoveTree deletes the whole <root>/<model>/<relDir> subtree and returns
// the absolute path that was removed.
//
// Safety invariant: the canonical absolute target must be the upload root
// itself or a descendant of it, otherwise nothing is touched and an
// UNSAFE_PATH error is returned. Оба пути канонизируются (Abs + симлинки),
// чтобы префиксное сравнение не обходилось через '..' или симлинк.
//
// Missing target reports models.ErrNotFound, not an error. Database rows
// referencing paths inside the subtree are NOT touched.
func (s *Store) RemoveTree(model models.WhisperModel, relDir string) (string, error) {
	var target string
	if relDir != "" {
		target = filepath.Join(s.root, string(model), relDir)
	} else {
		target = filepath.Join(s.root, string(model))
	}

	absRoot, err := canonicalize(s.root)
	if err != nil {
		return "", models.E(models.KindFileError, "resolve upload root").Wrap(err)
	}
	absTarget, err := canonicalize(target)
	if err != nil {
		return "", models.E(models.KindFileError, "resolve target directory").Wrap(err)
	}

	if !isWithin(absRoot, absTarget) {
		s.logger.Warn().Str("target", absTarget).Msg("refusing to delete outside upload root")
		return "", models.E(models.KindUnsafePath, "target path escapes the upload root").
			WithMeta(map[string]any{"target": absTarget})
	}

	if _, err := os.Stat(absTarget); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", models.ErrNotFound
		}
		return "", models.E(models.KindFileError, "stat target directory").Wrap(err)
	}

	if err := os.RemoveAll(absTarget); err != nil {
		return "", models.E(models.KindFileError, "remove directory").Wrap(err)
	}

	s.logger.Info().Str("path", absTarget).Msg("directory removed")
	return absTarget, nil
}

// canonicalize resolves p to an absolute path, following symlinks for the
// longest existing prefix. EvalSymlinks на несуществующем пути вернул бы
// ошибку, поэтому несуществующий хвост добавляется к канонизированному
// существующему предку.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	existing := abs
	var tail []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return "", fmt.Errorf("canonicalize %s: no existing ancestor", abs)
		}
		tail = append([]string{filepath.Base(existing)}, tail...)
		existing = parent
	}
}

// isWithin reports whether target equals root or lives under it.
// Сравнение по границе сегмента: /data/uploads-x не внутри /data/uploads.
func isWithin(root, target string) bool {
	if target == root {
		return true
	}
	return strings.HasPrefix(target, root+string(filepath.Separator))
}
