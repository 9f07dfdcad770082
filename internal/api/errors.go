package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/brainiac5/brainiac-server/internal/errors"
	"github.com/brainiac5/brainiac-server/internal/http/response"
	"github.com/brainiac5/brainiac-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		if apiErr := fromKnownError(errs); apiErr != nil {
			return apiErr
		}

		// Request schema violations are reported like every other
		// validation failure.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		if status >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("Request failed", "status", status, "error", errors.Join(errs...))
			}
			return &APIError{
				status:  status,
				Code:    response.CodeForStatus(status),
				Message: message,
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    response.CodeForStatus(status),
			Message: message,
		}
		var details []string
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// fromKnownError maps the first domain or store error in errs.
func fromKnownError(errs []error) *APIError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}

		var storeErr *store.Error
		if errors.As(err, &storeErr) {
			return &APIError{
				status:  storeErr.HTTPCode(),
				Code:    response.CodeForStatus(storeErr.HTTPCode()),
				Message: storeErr.Message,
			}
		}
	}
	return nil
}
