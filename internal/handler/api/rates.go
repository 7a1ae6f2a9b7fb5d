package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FxPull/internal/domain/models"
	"FxPull/internal/usecase"
	xhttp "FxPull/pkg/http"
	xlogger "FxPull/pkg/logger"
)

// RatesHandler serves the last run report and stored rates.
type RatesHandler struct {
	logger *xlogger.Logger
	uc     *usecase.RatesUseCase
	now    func() time.Time
}

func NewRatesHandler(logger *xlogger.Logger, uc *usecase.RatesUseCase) *RatesHandler {
	return &RatesHandler{logger: logger, uc: uc, now: time.Now}
}

func (h *RatesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/report", h.Report)
	g.GET("/rates", h.Rates)
}

func (h *RatesHandler) Report(c echo.Context) error {
	r, err := h.uc.LatestReport()
	if err != nil {
		return h.fail(c, "report", err)
	}
	return xhttp.SuccessResponse(c, r)
}

func (h *RatesHandler) Rates(c echo.Context) error {
	req := &models.RatesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from, ok := parseBound(req.From, time.Unix(0, 0).UTC())
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_TIME", "from", "from is not a valid timestamp", http.StatusBadRequest))
	}
	to, ok := parseBound(req.To, h.now().UTC())
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_TIME", "to", "to is not a valid timestamp", http.StatusBadRequest))
	}

	res, err := h.uc.GetRates(c.Request().Context(), usecase.GetRatesParams{
		Currency: req.Currency,
		From:     from,
		To:       to,
		Limit:    req.Limit,
	})
	if err != nil {
		return h.fail(c, "rates", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *RatesHandler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidQuery):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("%v", err))
	case errors.Is(err, usecase.ErrNoReport):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("%v", err))
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("%s failed", op).WithError(err))
}

// parseBound returns def for an empty value and false for an unparseable one.
func parseBound(s string, def time.Time) (time.Time, bool) {
	if s == "" {
		return def, true
	}
	t, ok := xhttp.ParseTime(s)
	return t.UTC(), ok
}
