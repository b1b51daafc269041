package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chungyifen/tax-refund/internal/errs"
)

// apiError is the uniform failure body. The client pipeline shows Message
// to the user verbatim.
type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiError{Message: message})
}

// writeMappedError translates sentinel errors into HTTP statuses. Unknown
// errors become an opaque 500; internals never leak into the message.
func writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "bad credentials")
	case errors.Is(err, errs.ErrForbidden):
		writeError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
