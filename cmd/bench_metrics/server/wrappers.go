package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/pkg/api"
)

type reqWrapper struct {
	r *http.Request
}

func (w *reqWrapper) Method() string                     { return w.r.Method }
func (w *reqWrapper) Header(key string) string           { return w.r.Header.Get(key) }
func (w *reqWrapper) SetHeader(key string, value string) { w.r.Header.Set(key, value) }
func (w *reqWrapper) Path() string                       { return w.r.URL.Path }
func (w *reqWrapper) PathValue(name string) string       { return w.r.PathValue(name) }
func (w *reqWrapper) Query(key string) []string          { return w.r.URL.Query()[key] }

type respWrapper struct {
	w      http.ResponseWriter
	logger *slog.Logger
}

func (w *respWrapper) Error(errorMessage string, code int, requestId string) {
	w.WriteJSON(api.Error{Message: errorMessage, Code: code, Trace: requestId}, code)
}

func (w *respWrapper) SetHeader(key string, value string) { w.w.Header().Set(key, value) }

func (w *respWrapper) WriteJSON(v any, code int) {
	w.w.Header().Set("Content-Type", "application/json")
	w.w.WriteHeader(code)
	if err := json.NewEncoder(w.w).Encode(v); err != nil {
		w.logger.Error("Failed to write response", constants.LOG_ERROR, err)
	}
}
