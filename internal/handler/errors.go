package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"postboard/internal/logger"
	"postboard/internal/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindDuplicateUsername:
		return http.StatusConflict
	case models.KindAuthenticationFailed, models.KindMissingToken, models.KindInvalidToken, models.KindExpiredToken:
		return http.StatusUnauthorized
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindSelfInteractionForbidden, models.KindPostExpired, models.KindNotPostOwner:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as {"error", "code"}. Internal failures get a
// generic message so driver details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)
	message := "internal server error"

	var domainErr *models.Error
	if kind != models.KindInternal && errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	writeJSON(w, StatusFor(kind), ErrorResponse{Error: message, Code: string(kind)})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if models.KindOf(err) == models.KindInternal {
		logger.WithRequestID(r.Context(), h.Logger).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	WriteError(w, err)
}
