package adminapi

import (
	"log/slog"
	"net/http"

	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
	"github.com/google/uuid"
)

// errorResponse is the sanitized body returned for every failed request:
// the operator-facing message never leaks internal detail, which instead
// goes to the server log keyed by ErrorID.
type errorResponse struct {
	Status  string `json:"status"`
	ErrorID string `json:"error_id"`
	Message string `json:"message"`
}

// statusCoder is satisfied by response.HTTPError.
type statusCoder interface {
	StatusCode() int
}

// renderError writes a sanitized JSON error body and logs the original
// error under the same 8-character correlation id.
func renderError(ctx *router.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	if sc, ok := err.(statusCoder); ok {
		status = sc.StatusCode()
	}

	errorID := uuid.New().String()[:8]
	logger.Error("admin api request failed",
		slog.String("error_id", errorID),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)

	if status >= 500 {
		message = "internal server error"
	}

	response.Render(ctx, response.JSONWithStatus(errorResponse{
		Status:  "error",
		ErrorID: errorID,
		Message: message,
	}, status))
}

// fail wraps err as an HTTPError reporting the given status code, for
// failures that don't fit one of the predefined response.Err* values.
func fail(status int, err error) error {
	e := response.NewHTTPError(err.Error())
	e.Status = status
	return e
}

func badRequest(msg string) error {
	return response.ErrBadRequest.WithMessage(msg)
}

func notFound(msg string) error {
	return response.ErrNotFound.WithMessage(msg)
}
