package api

import (
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/service/ratelimit"
	"EnergyPulse/internal/usecase"
	xhttp "EnergyPulse/pkg/http"
	applogger "EnergyPulse/pkg/logger"
	"EnergyPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler serves market summaries and raw price history.
type AnalysisEchoHandler struct {
	l  *applogger.Logger
	uc *usecase.AnalysisUseCase
	rl *ratelimit.Limiter
}

func NewAnalysisEchoHandler(l *applogger.Logger, uc *usecase.AnalysisUseCase, rl *ratelimit.Limiter) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{l: l, uc: uc, rl: rl}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	limit := RateLimit(h.rl, h.l)
	g.GET("/analysis", h.Analysis, limit)
	g.GET("/prices", h.Prices, limit)
	g.GET("/commodities", h.Commodities)
}

func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.MarketSummary(c.Request().Context(), xhttp.ParseList(req.Commodities), req.Lookback)
	if err != nil {
		h.l.Error("analysis usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

// Prices returns closes in [from, to]. Bounds default to the last year.
func (h *AnalysisEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	from, to := util.DayRange(
		xhttp.ParseTimeDefault(req.From, now.AddDate(-1, 0, 0)),
		xhttp.ParseTimeDefault(req.To, now),
	)
	res, err := h.uc.Prices(c.Request().Context(), req.Commodity, from, to)
	if err != nil {
		h.l.Error("prices usecase error", applogger.String("commodity", req.Commodity), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Commodities(c echo.Context) error {
	res, err := h.uc.Commodities(c.Request().Context())
	if err != nil {
		h.l.Error("commodities usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
