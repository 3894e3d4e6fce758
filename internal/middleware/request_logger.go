package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

const CtxLoggerKey = "logger" // *slog.Logger

// RequestLogger はrequest_id付きのloggerをcに載せる。echomw.RequestIDの後ろに置く。
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := log
			if rid := RequestIDFrom(c); rid != "" {
				l = log.With(slog.String("request_id", rid))
			}
			c.Set(CtxLoggerKey, l)
			return next(c)
		}
	}
}

// LoggerFrom はRequestLoggerが載せたloggerを返す。無ければslog.Default。
func LoggerFrom(c echo.Context) *slog.Logger {
	if l, ok := c.Get(CtxLoggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

func RequestIDFrom(c echo.Context) string {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
