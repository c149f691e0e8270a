// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/dtos"
)

// maxBodyBytes bounds request payloads; a message is at most 1000 runes.
const maxBodyBytes = 64 << 10

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[Handlers] Failed to encode response: %v", err)
	}
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, dtos.CreateErrorResponse(message, "", false))
}

// StatusFor maps an error kind to the HTTP status the API reports.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotAuthenticated, domain.KindInvalidCredentials:
		return http.StatusUnauthorized
	case domain.KindOwnerNotProvisioned:
		return http.StatusPreconditionFailed
	case domain.KindRemoteUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindCompletionUnavailable:
		return http.StatusBadGateway
	case domain.KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError reports err with its kind; data is attached for partial
// successes such as a message that was stored before the reply failed.
func writeDomainError(w http.ResponseWriter, err error, data interface{}) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.Printf("[Handlers] Untyped error: %v", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	resp := dtos.CreateErrorResponse(derr.Message, string(derr.Kind), derr.Retryable)
	resp.Data = data
	writeJSON(w, StatusFor(derr.Kind), resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
