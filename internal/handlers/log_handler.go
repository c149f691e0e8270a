// File: internal/handlers/log_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/iyunix/go-onyom/internal/services"
)

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

type LogHandler struct {
	logger services.Logger
}

func NewLogHandler(logger services.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogFrontendEvent handles POST /api/log.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	kv := []interface{}{"source", "client", "context", payload.Context}
	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error(payload.Message, kv...)
	case "warn", "warning":
		h.logger.Warn(payload.Message, kv...)
	case "debug":
		h.logger.Debug(payload.Message, kv...)
	default:
		h.logger.Info(payload.Message, kv...)
	}
	w.WriteHeader(http.StatusNoContent)
}
