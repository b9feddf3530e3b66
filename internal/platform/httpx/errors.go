// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrBadRequest = errors.New("bad request")
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate entry")
)

// Localizer renders a user-facing detail for errors that carry one.
// Returning ok=false falls back to err.Error().
type Localizer func(r *http.Request, err error) (detail string, ok bool)

// ErrorResponder translates errors raised anywhere below the handler into
// problem responses. It is the only place where errors become status codes.
type ErrorResponder struct {
	Logger   *slog.Logger
	Localize Localizer
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func (e ErrorResponder) RespondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", e.detail(r, err))
	case errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		if e.Logger != nil {
			e.Logger.Error("unhandled request error",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (e ErrorResponder) detail(r *http.Request, err error) string {
	if e.Localize != nil {
		if msg, ok := e.Localize(r, err); ok {
			return msg
		}
	}
	return err.Error()
}

// RespondError translates err without localization or logging.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponder{}.RespondError(w, r, err)
}
