package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/settings", h.Settings)

	// Все операции над аудиофайлами живут под одним префиксом.
	// Важно: trailing slash, чтобы диспетчер видел подпути.
	mux.HandleFunc("/audio_files", h.AudioFiles)
	mux.HandleFunc("/audio_files/", h.AudioFiles)

	return RequestLogger(h.logger, mux)
}
