package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// AudioFileUploaded — событие для будущего транскрибирующего воркера:
// файл записан на диск и запись создана в БД.
type AudioFileUploaded struct {
	eventID    uuid.UUID
	audioID    int64
	filePath   string
	model      WhisperModel
	occurredAt time.Time
}

func NewAudioFileUploaded(audioID int64, filePath string, model WhisperModel) *AudioFileUploaded {
	return &AudioFileUploaded{
		eventID:    uuid.New(),
		audioID:    audioID,
		filePath:   filePath,
		model:      model,
		occurredAt: time.Now().UTC(),
	}
}

func (e *AudioFileUploaded) EventID() uuid.UUID    { return e.eventID }
func (e *AudioFileUploaded) EventType() string     { return "AudioFileUploaded" }
func (e *AudioFileUploaded) AggregateID() string   { return strconv.FormatInt(e.audioID, 10) }
func (e *AudioFileUploaded) OccurredAt() time.Time { return e.occurredAt }

func (e *AudioFileUploaded) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID    `json:"event_id"`
		AudioID    int64        `json:"audio_id"`
		FilePath   string       `json:"file_path"`
		Model      WhisperModel `json:"whisper_model"`
		OccurredAt time.Time    `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		AudioID:    e.audioID,
		FilePath:   e.filePath,
		Model:      e.model,
		OccurredAt: e.occurredAt,
	})
}

// AudioStatusChanged — смена статуса обработки (pending -> processing и т.д.).
type AudioStatusChanged struct {
	eventID    uuid.UUID
	audioID    int64
	from       Status
	to         Status
	occurredAt time.Time
}

func NewAudioStatusChanged(audioID int64, from, to Status) *AudioStatusChanged {
	return &AudioStatusChanged{
		eventID:    uuid.New(),
		audioID:    audioID,
		from:       from,
		to:         to,
		occurredAt: time.Now().UTC(),
	}
}

func (e *AudioStatusChanged) EventID() uuid.UUID    { return e.eventID }
func (e *AudioStatusChanged) EventType() string     { return "AudioStatusChanged" }
func (e *AudioStatusChanged) AggregateID() string   { return strconv.FormatInt(e.audioID, 10) }
func (e *AudioStatusChanged) OccurredAt() time.Time { return e.occurredAt }

func (e *AudioStatusChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		AudioID    int64     `json:"audio_id"`
		From       Status    `json:"from"`
		To         Status    `json:"to"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		AudioID:    e.audioID,
		From:       e.from,
		To:         e.to,
		OccurredAt: e.occurredAt,
	})
}
