package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"aptledger/internal/core"
	"aptledger/internal/ledger"
	"aptledger/internal/log"
	"aptledger/internal/store"
)

type errorResponse struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeValidationError maps validator violations to the per-field error
// shape the API clients expect.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := errorResponse{Message: "Validation failed"}
	for _, fe := range verrs {
		resp.Errors = append(resp.Errors, fieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// writeDomainError translates store and ledger errors to status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ledger.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isInvalidInput(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger := log.FromContext(r.Context())
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, operation, log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isInvalidInput(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidMethod,
		core.ErrInvalidStatus,
		core.ErrInvalidRole,
		core.ErrEmptyUsername,
		core.ErrEmptyRoomNumber,
		core.ErrEmptyTitle,
		core.ErrEmptyKey,
		core.ErrZeroDate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// idParam parses the {id} path segment.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
