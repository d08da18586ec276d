package middleware

import (
	"net/http"
	"time"

	applogger "EnergyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs every request once it has been answered. Server errors
// log at error level so they reach the log collector.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", c.Path()),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.String("request_id", requestID(c)),
				applogger.Int("status", res.Status),
				applogger.Int64("bytes_out", res.Size),
				applogger.Duration("duration_ms", time.Since(start)),
			}
			switch {
			case res.Status >= http.StatusInternalServerError:
				l.Error("http request", fields...)
			case res.Status >= http.StatusBadRequest:
				l.Info("http request", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
