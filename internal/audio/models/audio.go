package models

import (
	"fmt"
	"time"
)

// Status — статус обработки аудиофайла внешним пайплайном.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// WhisperModel — модель Whisper, под которую загружен файл.
// Значение также используется как имя корневой папки внутри UPLOAD_DIR.
type WhisperModel string

const (
	ModelTiny    WhisperModel = "tiny"
	ModelBase    WhisperModel = "base"
	ModelSmall   WhisperModel = "small"
	ModelMedium  WhisperModel = "medium"
	ModelLarge   WhisperModel = "large"
	ModelLargeV2 WhisperModel = "large_v2"
	ModelLargeV3 WhisperModel = "large_v3"
)

// ParseStatus validates a wire string against the closed status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusDone, StatusError:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

// ParseModel validates a wire string against the closed model set.
func ParseModel(s string) (WhisperModel, error) {
	switch WhisperModel(s) {
	case ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge, ModelLargeV2, ModelLargeV3:
		return WhisperModel(s), nil
	default:
		return "", fmt.Errorf("unknown whisper model: %q", s)
	}
}

// AudioFile — одна строка метаданных загруженного файла.
// FilePath хранится относительно UPLOAD_DIR и всегда начинается
// с сегмента модели: <model>[/<relative_path>]/<filename>.
type AudioFile struct {
	ID                   int64        `db:"id"`
	Filename             string       `db:"filename"`
	FilePath             string       `db:"file_path"`
	FileLanguage         *string      `db:"file_language"`
	UploadTime           time.Time    `db:"upload_time"`
	StartProcessingAt    *time.Time   `db:"start_processing_at"`
	FinishedProcessingAt *time.Time   `db:"finished_processing_at"`
	StatusProcessing     Status       `db:"status_processing"`
	ErrorProcessing      *string      `db:"error_processing"`
	Transcript           *string      `db:"transcript"`
	WhisperModel         WhisperModel `db:"whisper_model"`
}
