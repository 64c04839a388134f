package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

// Error tags used to map failures to HTTP status codes.
var (
	TagValidation   = goerr.NewTag("validation")
	TagNotFound     = goerr.NewTag("not_found")
	TagConflict     = goerr.NewTag("conflict")
	TagUnauthorized = goerr.NewTag("unauthorized")
)

// StatusCode maps a tagged error to an HTTP status. Untagged errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerr.HasTag(err, TagValidation):
		return http.StatusBadRequest
	case goerr.HasTag(err, TagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, TagConflict):
		return http.StatusConflict
	case goerr.HasTag(err, TagUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Handle logs the error with a message and reports it to Sentry when a
// client is configured. The error is returned as-is.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err, msg)
	return err
}

// HandleHTTP logs the error and writes a JSON error response. Only 5xx
// errors are logged at error level and sent to Sentry; client errors are
// logged at info level.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	if statusCode >= http.StatusInternalServerError {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
		} else {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
			)
		}
		report(ctx, err, "HTTP error")
	} else {
		logger.Info("HTTP client error", "status", statusCode, "error", err.Error())
	}

	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		message = http.StatusText(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func report(ctx context.Context, err error, msg string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		details := sentry.Context{"message": msg}
		var ge *goerr.Error
		if errors.As(err, &ge) {
			for k, v := range ge.Values() {
				details[k] = v
			}
		}
		scope.SetContext("goerr", details)
		hub.CaptureException(err)
	})
}
