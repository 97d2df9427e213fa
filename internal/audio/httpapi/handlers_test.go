package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/audioscribe/internal/audio/models"
	"github.com/romariotrain/audioscribe/internal/audio/repository"
	"github.com/romariotrain/audioscribe/internal/audio/service"
	"github.com/romariotrain/audioscribe/internal/audio/storage"
	"github.com/romariotrain/audioscribe/internal/config"
)

type testEnv struct {
	server *httptest.Server
	store  *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.NewMemoryRepository()
	store := storage.New(t.TempDir(), zerolog.Nop())
	svc := service.New(repo, store, nil, zerolog.Nop())

	cfg := &config.Config{
		HTTPAddr:     ":0",
		UploadDir:    store.Root(),
		DefaultModel: models.ModelBase,
	}

	h := New(svc, cfg, zerolog.Nop())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: store}
}

func multipartBody(t *testing.T, relativePath, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if relativePath != "" {
		require.NoError(t, mw.WriteField("relative_path", relativePath))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, model, relativePath, filename, content string) *http.Response {
	t.Helper()

	body, contentType := multipartBody(t, relativePath, filename, content)
	u := e.server.URL + "/audio_files/upload"
	if model != "" {
		u += "?model_name=" + url.QueryEscape(model)
	}

	resp, err := http.Post(u, contentType, body)
	require.NoError(t, err)
	return resp
}

func decodeAudio(t *testing.T, resp *http.Response) AudioFileResponse {
	t.Helper()
	defer resp.Body.Close()

	var out AudioFileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	defer resp.Body.Close()

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func doRequest(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, bytes.NewReader(body))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpload_CreatesRecord(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "base", "", "take1.wav", "pcm-data")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decodeAudio(t, resp)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "take1.wav", got.Filename)
	assert.Equal(t, filepath.Join("base", "take1.wav"), got.FilePath)
	assert.Equal(t, "pending", got.StatusProcessing)
	assert.Equal(t, "base", got.WhisperModel)
}

func TestUpload_DefaultModelWhenOmitted(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "", "", "take1.wav", "x")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decodeAudio(t, resp)
	assert.Equal(t, "base", got.WhisperModel)
}

func TestUpload_UnknownModelRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "giant", "", "take1.wav", "x")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got := decodeError(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", got.ErrorCode)
}

func TestUpload_UnsafeRelativePathRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "base", "../escape", "take1.wav", "x")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got := decodeError(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", got.ErrorCode)
}

func TestList_EmptyThenN(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/audio_files/")
	require.NoError(t, err)
	var list []AudioFileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Empty(t, list)

	for i := 0; i < 3; i++ {
		r := env.upload(t, "base", "", fmt.Sprintf("take%d.wav", i), "x")
		require.Equal(t, http.StatusCreated, r.StatusCode)
		r.Body.Close()
	}

	resp, err = http.Get(env.server.URL + "/audio_files/")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()

	require.Len(t, list, 3)
	seen := map[int64]bool{}
	for _, a := range list {
		require.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
	}
}

func TestGet_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/audio_files/42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	got := decodeError(t, resp)
	assert.Equal(t, "NOT_FOUND", got.ErrorCode)
}

func TestGet_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/audio_files/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownload_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "base", "songs", "take1.wav", "raw-audio-bytes")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uploaded := decodeAudio(t, resp)

	dl, err := http.Get(fmt.Sprintf("%s/audio_files/%d/download", env.server.URL, uploaded.ID))
	require.NoError(t, err)
	defer dl.Body.Close()

	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Contains(t, dl.Header.Get("Content-Disposition"), "take1.wav")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "raw-audio-bytes", buf.String())
}

func TestDelete_RemovesRecordAndFile(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "base", "", "take1.wav", "x")
	uploaded := decodeAudio(t, resp)

	del := doRequest(t, http.MethodDelete, fmt.Sprintf("%s/audio_files/%d", env.server.URL, uploaded.ID), nil)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	_, statErr := os.Stat(filepath.Join(env.store.Root(), "base", "take1.wav"))
	assert.True(t, os.IsNotExist(statErr))

	// Повторное удаление — 404.
	again := doRequest(t, http.MethodDelete, fmt.Sprintf("%s/audio_files/%d", env.server.URL, uploaded.ID), nil)
	defer again.Body.Close()
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}

func TestDeleteDir_Flow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "base", "songs", "take1.wav", "x")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Удаление существующей директории.
	del := doRequest(t, http.MethodDelete, env.server.URL+"/audio_files/dir?model_name=base&relative_path=songs", nil)
	require.Equal(t, http.StatusOK, del.StatusCode)
	var result DeleteDirResponse
	require.NoError(t, json.NewDecoder(del.Body).Decode(&result))
	del.Body.Close()
	assert.Equal(t, "deleted", result.Status)

	// Повторно — 404, директории больше нет.
	miss := doRequest(t, http.MethodDelete, env.server.URL+"/audio_files/dir?model_name=base&relative_path=songs", nil)
	defer miss.Body.Close()
	assert.Equal(t, http.StatusNotFound, miss.StatusCode)
}

func TestDeleteDir_UnsafePath(t *testing.T) {
	env := newTestEnv(t)

	del := doRequest(t, http.MethodDelete, env.server.URL+"/audio_files/dir?model_name=base&relative_path="+url.QueryEscape("../../etc"), nil)
	require.Equal(t, http.StatusBadRequest, del.StatusCode)

	got := decodeError(t, del)
	assert.Equal(t, "VALIDATION_ERROR", got.ErrorCode)
}

func TestChangeStatus_Flow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "base", "", "take1.wav", "x")
	uploaded := decodeAudio(t, resp)

	body, _ := json.Marshal(ChangeStatusRequest{Status: "processing"})
	patch := doRequest(t, http.MethodPatch, fmt.Sprintf("%s/audio_files/%d/status", env.server.URL, uploaded.ID), body)
	require.Equal(t, http.StatusOK, patch.StatusCode)

	got := decodeAudio(t, patch)
	assert.Equal(t, "processing", got.StatusProcessing)
	assert.NotNil(t, got.StartProcessingAt)

	// Недопустимый переход: processing -> pending.
	body, _ = json.Marshal(ChangeStatusRequest{Status: "pending"})
	bad := doRequest(t, http.MethodPatch, fmt.Sprintf("%s/audio_files/%d/status", env.server.URL, uploaded.ID), body)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestSettings_HidesSecrets(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settings map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	assert.NotContains(t, settings, "JWT_SECRET")
	assert.Contains(t, settings, "UPLOAD_DIR")
}
