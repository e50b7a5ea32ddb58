package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// maxJSONBody bounds a decoded JSON request body.
const maxJSONBody = 1 << 20

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func ok(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func created(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	}
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidField, apperr.ErrCodeInvalidID,
		apperr.ErrCodeInvalidImage, apperr.ErrCodeValidationFailed, apperr.ErrCodeEmptyInput:
		return http.StatusBadRequest
	case apperr.ErrCodeUnauthorized, apperr.ErrCodeSessionNotFound, apperr.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case apperr.ErrCodeForbidden:
		return http.StatusForbidden
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as a failed envelope. Server errors are logged and
// their details hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status := StatusFor(err)
	env := Envelope{Success: false, Errors: apperr.GetDetails(err)}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		env.Message = "Internal server error"
	case apperr.GetCode(err) != "":
		env.Message = apperr.UserMessage(err)
	default:
		env.Message = http.StatusText(status)
	}
	writeJSON(w, status, env)
}

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.ErrCodeInvalidInput, "Request body is required")
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "Invalid JSON body")
	}
	return nil
}
