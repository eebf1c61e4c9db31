package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/validate"
)

// ErrorHandler resolves the tagged failure types into responses: redirects
// for gate decisions, field errors for validation, the backend's detail for
// gateway failures, and a generic 500 for everything else. Handlers never
// inspect error values themselves.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var re *session.RedirectError
		if errors.As(err, &re) {
			_ = c.Redirect(re.Code, re.Location)
			return
		}

		var ve validate.Errors
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"errors": ve})
			return
		}

		var ge *gateway.Error
		if errors.As(err, &ge) {
			status := ge.Status
			if status < 400 || status > 599 {
				status = http.StatusBadGateway
			}
			_ = c.JSON(status, echo.Map{"detail": ge.Message})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := he.Message
			if _, ok := msg.(string); !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, echo.Map{"detail": msg})
			return
		}

		log.Error("unhandled error", "path", c.Path(), "error", err)
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"detail": gateway.FallbackMessage})
	}
}

// notFoundPage is the localized not-found mapping for backend 404s on detail
// pages.
func notFoundPage(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, message)
}
