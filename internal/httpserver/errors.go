package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

const internalErrorMessage = "internal server error"

// ErrorHandler renders every error as {"error": msg}. 5xx messages are hidden.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := internalErrorMessage

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			msg = fmt.Sprint(he.Message)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// fail logs err under event and converts it into the matching HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	code, msg := statusOf(err)
	if m := service.Message(err); m != "" && code < http.StatusInternalServerError {
		msg = m
	}

	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", "unexpected error", "error", err)
		return echo.NewHTTPError(code, internalErrorMessage)
	}
	l.Warn(event, "status", code, "reason", msg, "error", err)
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
