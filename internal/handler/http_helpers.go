package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pdf-extract-api/internal/domain"
	apperrors "pdf-extract-api/pkg/errors"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes the error envelope (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// toAppError classifies a pipeline error into a typed AppError.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrInvalidGrouping),
		errors.Is(err, domain.ErrNoValidInput),
		errors.Is(err, domain.ErrEmptyDocument):
		return apperrors.NewValidationError(err.Error())
	case errors.Is(err, domain.ErrRetriesExhausted):
		return apperrors.NewRetriesExhaustedError(err.Error(), err)
	case errors.Is(err, domain.ErrMalformedResponse):
		return apperrors.NewProcessingError("model response could not be parsed", err.Error(), err)
	case errors.Is(err, domain.ErrGroupIndexOutOfRange):
		return apperrors.NewInternalError(err.Error(), err)
	}
	return apperrors.NewInternalError(err.Error(), err)
}

// statusForError maps pipeline errors onto HTTP status codes.
func statusForError(err error) int {
	return toAppError(err).StatusCode
}

// writePipelineError classifies err and writes the error envelope.
func writePipelineError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	writeError(w, appErr.StatusCode, appErr.Message)
}

// decodeBase64PDF decodes a base64 document payload, tolerating surrounding
// whitespace and a data-URI prefix.
func decodeBase64PDF(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if s == "" {
		return nil, &domain.ValidationError{Field: "base64Content", Message: "is required"}
	}
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		s = s[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &domain.ValidationError{Field: "base64Content", Message: "is not valid base64"}
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Field: "base64Content", Message: "decodes to an empty document"}
	}
	return data, nil
}
