package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/romariotrain/audioscribe/internal/audio/models"
	"github.com/romariotrain/audioscribe/internal/audio/service"
	"github.com/romariotrain/audioscribe/internal/config"
)

// Лимит на multipart-форму в памяти, остальное уходит во временные файлы.
const maxMultipartMemory = 32 << 20

// statusByKind — единственное место, где прикладные ошибки превращаются
// в HTTP-статусы.
var statusByKind = map[models.Kind]int{
	models.KindNotFound:      http.StatusNotFound,
	models.KindValidation:    http.StatusBadRequest,
	models.KindUnsafePath:    http.StatusBadRequest,
	models.KindFileError:     http.StatusInternalServerError,
	models.KindDatabase:      http.StatusInternalServerError,
	models.KindConfiguration: http.StatusInternalServerError,
	models.KindInternal:      http.StatusInternalServerError,
}

type Handler struct {
	svc    *service.Service
	cfg    *config.Config
	logger zerolog.Logger
}

func New(svc *service.Service, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		cfg:    cfg,
		logger: logger.With().Str("component", "httpapi").Logger(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Settings возвращает текущую конфигурацию без секретов.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, h.cfg.Sanitized())
}

// AudioFiles — диспетчер всех маршрутов под /audio_files.
//
//	POST   /audio_files/upload?model_name=&relative_path=
//	GET    /audio_files/
//	DELETE /audio_files/dir?model_name=&relative_path=
//	GET    /audio_files/{id}
//	GET    /audio_files/{id}/download
//	PATCH  /audio_files/{id}/status
//	DELETE /audio_files/{id}
func (h *Handler) AudioFiles(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/audio_files")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "":
		h.list(w, r)
	case rest == "upload":
		h.upload(w, r)
	case rest == "dir":
		h.deleteDir(w, r)
	case strings.HasSuffix(rest, "/download"):
		h.download(w, r, strings.TrimSuffix(rest, "/download"))
	case strings.HasSuffix(rest, "/status"):
		h.changeStatus(w, r, strings.TrimSuffix(rest, "/status"))
	default:
		h.byID(w, r, rest)
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}
	defer r.Body.Close()

	model, err := h.modelFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, models.E(models.KindValidation, "invalid multipart form").Wrap(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, models.E(models.KindValidation, "missing file field"))
		return
	}
	defer file.Close()

	relativePath := r.FormValue("relative_path")

	var language *string
	if lang := r.FormValue("file_language"); lang != "" {
		language = &lang
	}

	a, err := h.svc.Upload(r.Context(), model, relativePath, header.Filename, language, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAudioFileResponse(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}

	audios, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]AudioFileResponse, 0, len(audios))
	for _, a := range audios {
		out = append(out, toAudioFileResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, err := h.svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, notFoundAs(err, "audio file"))
			return
		}
		writeJSON(w, http.StatusOK, toAudioFileResponse(a))

	case http.MethodDelete:
		if err := h.svc.Delete(r.Context(), id); err != nil {
			writeError(w, notFoundAs(err, "audio file"))
			return
		}
		writeJSON(w, http.StatusOK, DeleteResponse{Status: "deleted", ID: id})

	default:
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, idStr string) {
	if r.Method != http.MethodGet {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}

	id, err := parseID(idStr)
	if err != nil {
		writeError(w, err)
		return
	}

	a, f, err := h.svc.Download(r.Context(), id)
	if err != nil {
		writeError(w, notFoundAs(err, "audio file"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.Filename+`"`)
	if _, err := io.Copy(w, f); err != nil {
		// Заголовки уже отправлены, остаётся только залогировать.
		h.logger.Error().Err(err).Int64("id", id).Msg("download aborted")
	}
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, idStr string) {
	if r.Method != http.MethodPatch {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}
	defer r.Body.Close()

	id, err := parseID(idStr)
	if err != nil {
		writeError(w, err)
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.E(models.KindValidation, "invalid json body"))
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeError(w, models.E(models.KindValidation, err.Error()))
		return
	}

	a, err := h.svc.ChangeStatus(r.Context(), id, status, req.Transcript, req.Error)
	if err != nil {
		writeError(w, notFoundAs(err, "audio file"))
		return
	}

	writeJSON(w, http.StatusOK, toAudioFileResponse(a))
}

func (h *Handler) deleteDir(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorStatus(w, http.StatusMethodNotAllowed, models.E(models.KindValidation, "method not allowed"))
		return
	}

	model, err := h.modelFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	relativePath := r.URL.Query().Get("relative_path")
	path, err := h.svc.DeleteDirectory(r.Context(), model, relativePath)
	if err != nil {
		writeError(w, notFoundAs(err, "directory"))
		return
	}

	writeJSON(w, http.StatusOK, DeleteDirResponse{Status: "deleted", Path: path})
}

func (h *Handler) modelFromRequest(r *http.Request) (models.WhisperModel, error) {
	name := r.URL.Query().Get("model_name")
	if name == "" {
		return h.cfg.DefaultModel, nil
	}
	model, err := models.ParseModel(name)
	if err != nil {
		return "", models.E(models.KindValidation, err.Error())
	}
	return model, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.E(models.KindValidation, "invalid id: "+s)
	}
	return id, nil
}

// notFoundAs превращает сентинел ErrNotFound в прикладную 404-ошибку
// с именем ресурса, остальные ошибки проходят как есть.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.E(models.KindNotFound, resource+" not found")
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeErrorStatus(w, status, err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{
		ErrorCode: string(models.KindOf(err)),
		Detail:    err.Error(),
	}
	var appErr *models.Error
	if errors.As(err, &appErr) {
		resp.Detail = appErr.Message
		resp.Meta = appErr.Meta
	}
	writeJSON(w, status, resp)
}
