package api

import (
	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/service/ratelimit"
	"EnergyPulse/internal/usecase"
	xhttp "EnergyPulse/pkg/http"
	applogger "EnergyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler serves model forecasts and backtests.
type ForecastEchoHandler struct {
	l  *applogger.Logger
	uc *usecase.ForecastUseCase
	rl *ratelimit.Limiter
}

func NewForecastEchoHandler(l *applogger.Logger, uc *usecase.ForecastUseCase, rl *ratelimit.Limiter) *ForecastEchoHandler {
	return &ForecastEchoHandler{l: l, uc: uc, rl: rl}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/forecast")
	limit := RateLimit(h.rl, h.l)
	g.GET("", h.Forecast, limit)
	g.GET("/backtest", h.Backtest, limit)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Forecast(c.Request().Context(), *req)
	if err != nil {
		h.l.Error("forecast usecase error",
			applogger.String("commodity", req.Commodity),
			applogger.String("model", req.Model),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	if res.Cached {
		c.Response().Header().Set("X-Cache", "HIT")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Backtest(c.Request().Context(), *req)
	if err != nil {
		h.l.Error("backtest usecase error", applogger.String("commodity", req.Commodity), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
