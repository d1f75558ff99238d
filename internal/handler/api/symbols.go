package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"MarketWatch/internal/domain/models"
	"MarketWatch/internal/usecase"
	xhttp "MarketWatch/pkg/http"
	xlogger "MarketWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

const usage = "Request data from symbol (@Body) using POST"

type SymbolReader interface {
	GetOrPopulate(ctx context.Context, symbol string, skipCache bool) (json.RawMessage, error)
	Symbols(ctx context.Context) ([]string, error)
}

type QuoteReader interface {
	ComputeOHLCLastDay(ctx context.Context, symbol string, usePreviousDay bool) (*models.OHLCVSample, error)
	SupportResistance(ctx context.Context, symbol string, usePreviousDay, skipCache bool) (json.RawMessage, error)
}

type Refresher interface {
	RefreshOnce(ctx context.Context) (*usecase.RefreshReport, error)
}

// SymbolsHandler serves cached symbol records and derived quotes.
type SymbolsHandler struct {
	logger  *xlogger.Logger
	symbols SymbolReader
	quotes  QuoteReader
	refresh Refresher
}

func NewSymbolsHandler(logger *xlogger.Logger, symbols SymbolReader, quotes QuoteReader, refresh Refresher) *SymbolsHandler {
	return &SymbolsHandler{
		logger:  logger.Component("api"),
		symbols: symbols,
		quotes:  quotes,
		refresh: refresh,
	}
}

func (h *SymbolsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Usage)
	e.GET("/healthz", h.Health)

	g := e.Group("/api/v1")
	g.POST("/symbols", h.GetOrPopulate)
	g.GET("/symbols", h.List)
	g.GET("/symbols/:symbol/ohlc", h.OHLC)
	g.GET("/symbols/:symbol/pivots", h.Pivots)
	g.POST("/refresh", h.Refresh)
}

func (h *SymbolsHandler) Usage(c echo.Context) error {
	return c.String(http.StatusOK, usage)
}

func (h *SymbolsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// GetOrPopulate returns the composite record for the symbol in the body.
func (h *SymbolsHandler) GetOrPopulate(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	raw, err := h.symbols.GetOrPopulate(c.Request().Context(), req.Symbol, bool(req.SkipCache))
	if err != nil {
		return h.fail(c, "get or populate", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, raw)
}

func (h *SymbolsHandler) List(c echo.Context) error {
	symbols, err := h.symbols.Symbols(c.Request().Context())
	if err != nil {
		return h.fail(c, "list symbols", "", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

func (h *SymbolsHandler) OHLC(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sample, err := h.quotes.ComputeOHLCLastDay(c.Request().Context(), req.Symbol, xhttp.QueryBool(c, "previousDay", false))
	if err != nil {
		return h.fail(c, "ohlc", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, sample)
}

func (h *SymbolsHandler) Pivots(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	raw, err := h.quotes.SupportResistance(c.Request().Context(), req.Symbol,
		xhttp.QueryBool(c, "previousDay", false),
		xhttp.QueryBool(c, "skipCache", false),
	)
	if err != nil {
		return h.fail(c, "pivots", req.Symbol, err)
	}

	var rec models.SupportResistance
	if err := json.Unmarshal(raw, &rec); err != nil {
		return h.fail(c, "pivots", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, newPivotsView(&rec))
}

func (h *SymbolsHandler) Refresh(c echo.Context) error {
	report, err := h.refresh.RefreshOnce(c.Request().Context())
	if err != nil {
		return h.fail(c, "refresh", "", err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *SymbolsHandler) fail(c echo.Context, op, symbol string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.String("symbol", symbol), xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.String("symbol", symbol), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError classifies domain errors into HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var (
		verr *models.ValidationError
		ferr *models.FetchError
		serr *models.StoreError
	)
	switch {
	case errors.As(err, &verr):
		return xhttp.BadRequestError(verr.Field, verr.Message).WithError(err)
	case errors.As(err, &ferr):
		appErr := xhttp.UpstreamError("market data provider request failed").WithError(err)
		appErr.WithParam("symbol", ferr.Symbol)
		if ferr.Module != "" {
			appErr.WithParam("module", ferr.Module)
		}
		if ferr.Code != "" {
			appErr.WithParam("code", ferr.Code).WithParam("description", ferr.Description)
		}
		return appErr
	case errors.As(err, &serr):
		return xhttp.StoreUnavailableError("cache store unavailable").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
