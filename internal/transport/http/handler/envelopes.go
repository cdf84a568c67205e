package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
)

// MessageEnvelope is the generic response wrapper: either a message or an
// error with its machine code.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// TokenEnvelope wraps login/refresh responses.
type TokenEnvelope struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	User         *domain.UserSummary `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: code})
}

// httpError renders a service error. Typed domain errors carry their own
// status and code; anything else is a 500 whose cause is logged, not leaked.
func httpError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		msg := de.Message
		if errors.Is(de, domain.ErrStorage) {
			slog.Error("storage failure", "err", err)
			msg = "database operation failed"
		}
		writeError(w, de.Status, de.Code, msg)
		return
	}
	slog.Error("unhandled error", "err", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
