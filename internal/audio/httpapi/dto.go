package httpapi

import (
	"time"

	"github.com/romariotrain/audioscribe/internal/audio/models"
)

type AudioFileResponse struct {
	ID                   int64      `json:"id"`
	Filename             string     `json:"filename"`
	FilePath             string     `json:"file_path"`
	FileLanguage         *string    `json:"file_language,omitempty"`
	UploadTime           time.Time  `json:"upload_time"`
	StartProcessingAt    *time.Time `json:"start_processing_at,omitempty"`
	FinishedProcessingAt *time.Time `json:"finished_processing_at,omitempty"`
	StatusProcessing     string     `json:"status_processing"`
	ErrorProcessing      *string    `json:"error_processing,omitempty"`
	Transcript           *string    `json:"transcript,omitempty"`
	WhisperModel         string     `json:"whisper_model"`
}

func toAudioFileResponse(a *models.AudioFile) AudioFileResponse {
	return AudioFileResponse{
		ID:                   a.ID,
		Filename:             a.Filename,
		FilePath:             a.FilePath,
		FileLanguage:         a.FileLanguage,
		UploadTime:           a.UploadTime,
		StartProcessingAt:    a.StartProcessingAt,
		FinishedProcessingAt: a.FinishedProcessingAt,
		StatusProcessing:     string(a.StatusProcessing),
		ErrorProcessing:      a.ErrorProcessing,
		Transcript:           a.Transcript,
		WhisperModel:         string(a.WhisperModel),
	}
}

type DeleteResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

type DeleteDirResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type ChangeStatusRequest struct {
	Status     string  `json:"status"`
	Transcript *string `json:"transcript,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// ErrorResponse — единый формат тела ошибки: машинный код, человекочитаемое
// описание и опциональные метаданные.
type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	Detail    string         `json:"detail"`
	Meta      map[string]any `json:"meta,omitempty"`
}
