package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/wato-stats/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "wato-stats"

	internalErrorMessage = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalError = mappedError{
	HTTPStatus: http.StatusInternalServerError,
	Reason:     "internalError",
	Status:     "INTERNAL",
}

// errorMappings is checked in order; the first sentinel found in the chain wins.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "ABORTED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError maps err onto the envelope. Unmapped errors are reported as a
// generic 500 so storage and parser details stay in the logs.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = internalErrorMessage
	}
	writeErrorEnvelope(ctx, w, mapped, message)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeErrorEnvelope(ctx, w, internalError, internalErrorMessage)
}

func writeErrorEnvelope(ctx context.Context, w http.ResponseWriter, mapped mappedError, message string) {
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: message,
			}},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalError
}
