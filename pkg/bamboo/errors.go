package bamboo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("UNAUTHORIZED")
	ErrForbidden    = errors.New("FORBIDDEN")
	ErrNotFound     = errors.New("NOT_FOUND")
	ErrUnavailable  = errors.New("UPSTREAM_UNAVAILABLE")
)

// APIError is a non-2xx answer from the Bamboo API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("bamboo api status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("bamboo api status %d", e.StatusCode)
}

// Unwrap lets errors.Is match the status sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Message returns the server supplied message or a generic one by status.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.StatusCode {
	case http.StatusBadRequest:
		return "Données invalides"
	case http.StatusUnauthorized:
		return "Session expirée, veuillez vous reconnecter"
	case http.StatusForbidden:
		return "Accès non autorisé"
	case http.StatusNotFound:
		return "Ressource introuvable"
	}
	return "Erreur serveur"
}

// newAPIError extracts the FastAPI style "detail" or a "message" field.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	var detail string
	if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil {
		apiErr.Detail = detail
	} else if payload.Message != "" {
		apiErr.Detail = payload.Message
	}
	return apiErr
}

// ErrorMessage returns a user facing message for any client error.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrUnavailable) {
		return "Impossible de se connecter au serveur"
	}
	return fallback
}
