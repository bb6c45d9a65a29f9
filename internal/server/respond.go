package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/apperr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// Error maps an error onto an HTTP status and a stable error body.
// Keeps handlers clean by centralizing the taxonomy-to-status mapping;
// infra errors are logged here and surfaced generically.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindDependency {
			log.Error("dependency failure", "err", err)
		}
		writeError(w, statusForKind(e.Kind), e.Code, e.Message)
		return
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		writeError(w, http.StatusConflict, "already_exists", "resource already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.Error("request aborted", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		log.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// Decode parses a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid_body", "request body must be valid JSON")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorBody{Code: code, Message: msg}})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
