package api

import (
	"EnergyPulse/internal/service/ratelimit"
	xhttp "EnergyPulse/pkg/http"
	applogger "EnergyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RateLimit throttles each client per route. A nil limiter disables it.
func RateLimit(rl *ratelimit.Limiter, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rl == nil {
			return next
		}
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP() + ":" + c.Path()) {
				l.Warn("rate limited",
					applogger.String("remote", c.RealIP()),
					applogger.String("path", c.Path()),
				)
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
			}
			return next(c)
		}
	}
}
