package api

import (
	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/service/ratelimit"
	"EnergyPulse/internal/services/alerts"
	"EnergyPulse/internal/usecase"
	xhttp "EnergyPulse/pkg/http"
	applogger "EnergyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AlertsEchoHandler exposes alert generation, history and rule management.
type AlertsEchoHandler struct {
	l  *applogger.Logger
	uc *usecase.AlertsUseCase
	rl *ratelimit.Limiter
}

func NewAlertsEchoHandler(l *applogger.Logger, uc *usecase.AlertsUseCase, rl *ratelimit.Limiter) *AlertsEchoHandler {
	return &AlertsEchoHandler{l: l, uc: uc, rl: rl}
}

func (h *AlertsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/alerts")
	g.POST("/generate", h.Generate, RateLimit(h.rl, h.l))
	g.GET("/summary", h.Summary)
	g.GET("/history", h.History)
	g.GET("/rules", h.Rules)
	g.PUT("/rules", h.UpdateRules)
}

type rulesUpdateResponse struct {
	Rules   models.AlertRules `json:"rules"`
	Ignored []string          `json:"ignored,omitempty"`
}

func (h *AlertsEchoHandler) Generate(c echo.Context) error {
	req := &models.GenerateAlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Generate(c.Request().Context(), req.Commodities, req.Lookback)
	if err != nil {
		h.l.Error("alerts usecase error", applogger.Strings("commodities", req.Commodities), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res == nil {
		res = []models.AlertRecord{}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AlertsEchoHandler) Summary(c echo.Context) error {
	req := &models.AlertSummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.uc.Summary(req.Hours))
}

func (h *AlertsEchoHandler) History(c echo.Context) error {
	req := &models.AlertHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res := h.uc.Recent(req.Limit)
	if res == nil {
		res = []models.AlertRecord{}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AlertsEchoHandler) Rules(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.uc.Rules())
}

// UpdateRules accepts a partial rule document. Unknown keys are reported
// back and otherwise ignored.
func (h *AlertsEchoHandler) UpdateRules(c echo.Context) error {
	values := map[string]any{}
	if err := c.Bind(&values); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("rules body must be a JSON object").WithError(err))
	}

	patch, ignored, err := alerts.ParseRuleMap(values)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	if verr := xhttp.ValidateStruct(c.Request().Context(), &patch); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rules := h.uc.UpdateRules(patch)
	if len(ignored) > 0 {
		h.l.Warn("alert rules update ignored keys", applogger.Strings("keys", ignored))
	}
	return xhttp.SuccessResponse(c, rulesUpdateResponse{Rules: rules, Ignored: ignored})
}
