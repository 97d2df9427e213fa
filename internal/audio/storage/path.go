package storage

import (
	"path"
	"strings"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

// Символы, запрещённые в relative_path (Windows-style спецсимволы).
const forbiddenPathChars = `<>:"|?*`

// ValidateRelativePath — жёсткое предусловие нормализации, проверяется
// на границе до любых мутаций. Отклоняет '..', обратные слэши,
// абсолютные пути и спецсимволы.
func ValidateRelativePath(p string) error {
	if strings.Contains(p, `\`) {
		return models.E(models.KindValidation, "use forward slash '/' as the directory separator")
	}
	if strings.HasPrefix(p, "/") {
		return models.E(models.KindValidation, "path must not start with '/' (absolute paths are forbidden)")
	}
	if strings.Contains(p, "..") {
		return models.E(models.KindValidation, "path must not contain '..'")
	}
	if strings.ContainsAny(p, forbiddenPathChars) {
		return models.E(models.KindValidation, "path contains forbidden characters")
	}
	return nil
}

// NormalizeRelativePath turns an arbitrary relative path into a
// directory-only fragment safe to join under the upload root.
//
// Rules: backslashes become '/', surrounding whitespace and slashes are
// trimmed, and if the final segment contains a '.' it is treated as a
// filename and dropped. Empty input normalizes to "" (model root).
//
// A directory named like "v1.2" is truncated as if it were a filename.
// Известное ограничение, поведение сохранено намеренно.
func NormalizeRelativePath(relativePath string) string {
	p := strings.ReplaceAll(relativePath, `\`, "/")
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	if strings.Contains(path.Base(p), ".") {
		dir := path.Dir(p)
		if dir == "." {
			return ""
		}
		return dir
	}
	return p
}
