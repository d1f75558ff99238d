package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/internal/service/ratelimit"
	xhttp "MarketWatch/pkg/http"
	"MarketWatch/pkg/logger"
	"MarketWatch/pkg/metrics"
	"MarketWatch/pkg/util"
)

const (
	DefaultBaseURL    = "https://query1.finance.yahoo.com"
	DefaultChartRange = "5d"

	quoteSummaryRoot = "quoteSummary"
	chartRoot        = "chart"

	// chartCall is the pacer slot of the lone chart request. A fixed pause
	// only fires on multiples of its interval, so chart reads are not
	// delayed unless every call is paced.
	chartCall = 1
)

// Client aggregates Yahoo Finance quoteSummary modules and chart data.
type Client struct {
	baseURL    string
	modules    []string
	chartRange string
	http       *xhttp.Client
	pacer      ratelimit.Pacer
	metrics    domrepo.Metrics
	log        *logger.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithModules sets the ordered module list fetched by FetchSymbolInfo.
func WithModules(modules []string) Option {
	return func(c *Client) { c.modules = append([]string(nil), modules...) }
}

func WithChartRange(r string) Option {
	return func(c *Client) {
		if r != "" {
			c.chartRange = r
		}
	}
}

func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithPacer(p ratelimit.Pacer) Option {
	return func(c *Client) { c.pacer = p }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.Component("yahoo") }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		chartRange: DefaultChartRange,
		pacer:      ratelimit.Off{},
		metrics:    metrics.Nop{},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient()
	}
	return c
}

// Modules returns the ordered module list.
func (c *Client) Modules() []string {
	return append([]string(nil), c.modules...)
}

// FetchSymbolInfo fetches every configured module in order and returns the
// composite record. Any single failure aborts the aggregation; a partial
// record is never returned.
func (c *Client) FetchSymbolInfo(ctx context.Context, symbol string) (models.CompositeRecord, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, &models.ValidationError{Field: "symbol", Message: "symbol is required"}
	}

	start := time.Now()
	record := make(models.CompositeRecord, len(c.modules))
	for i, module := range c.modules {
		if err := c.pacer.Wait(ctx, i); err != nil {
			return nil, &models.FetchError{Symbol: symbol, Module: module, Err: fmt.Errorf("pacing: %w", err)}
		}
		payload, err := c.fetchModule(ctx, symbol, module)
		if err != nil {
			return nil, err
		}
		record[module] = payload
	}

	c.log.Debug("symbol aggregated",
		logger.String("symbol", symbol),
		logger.Int("modules", len(record)),
		logger.Duration("took", time.Since(start)),
	)
	return record, nil
}

func (c *Client) fetchModule(ctx context.Context, symbol, module string) (any, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(module))

	doc, err := c.getDocument(ctx, symbol, module, u, quoteSummaryRoot)
	if err != nil {
		return nil, err
	}
	return util.ExtractValue(doc, quoteSummaryRoot+".result.0."+module), nil
}

// FetchLastDaySample reads the daily chart and returns the most recent bar,
// or the one before it when usePreviousDay is set.
func (c *Client) FetchLastDaySample(ctx context.Context, symbol string, usePreviousDay bool) (*models.OHLCVSample, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, &models.ValidationError{Field: "symbol", Message: "symbol is required"}
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.chartRange))

	if err := c.pacer.Wait(ctx, chartCall); err != nil {
		return nil, &models.FetchError{Symbol: symbol, Module: chartRoot, URL: u, Err: fmt.Errorf("pacing: %w", err)}
	}
	doc, err := c.getDocument(ctx, symbol, chartRoot, u, chartRoot)
	if err != nil {
		return nil, err
	}

	bars, err := parseChart(doc)
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Module: chartRoot, URL: u, Err: err}
	}
	sample, err := bars.pick(usePreviousDay)
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Module: chartRoot, URL: u, Err: err}
	}
	sample.Symbol = symbol
	return sample, nil
}

// getDocument fetches u, decodes it and surfaces the {root:{error:{...}}} shape.
func (c *Client) getDocument(ctx context.Context, symbol, module, u, root string) (any, error) {
	start := time.Now()
	doc, err := c.fetchDocument(ctx, u, root)
	c.metrics.RecordUpstreamCall(module, err == nil, time.Since(start).Seconds())
	if err != nil {
		var fe *models.FetchError
		if !errors.As(err, &fe) {
			fe = &models.FetchError{Err: err}
		}
		fe.Symbol, fe.Module, fe.URL = symbol, module, u
		c.log.Warn("upstream call failed",
			logger.String("symbol", symbol),
			logger.String("module", module),
			logger.Error(err),
		)
		return nil, fe
	}
	return doc, nil
}

func (c *Client) fetchDocument(ctx context.Context, u, root string) (any, error) {
	body, err := c.http.Fetch(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: u})
	if err != nil {
		fe := &models.FetchError{Err: err}
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			fe.StatusCode = se.StatusCode
			if doc, derr := util.DecodeDocument(se.Body); derr == nil {
				fe.Code, fe.Description, _ = upstreamError(doc, root)
			}
		}
		return nil, fe
	}

	doc, err := util.DecodeDocument(body)
	if err != nil {
		return nil, &models.FetchError{Err: err}
	}
	if code, desc, ok := upstreamError(doc, root); ok {
		return nil, &models.FetchError{Code: code, Description: desc, Err: errors.New("upstream reported an error")}
	}
	return doc, nil
}

// upstreamError detects a non-null root.error object.
func upstreamError(doc any, root string) (code, description string, ok bool) {
	ext := util.Extract(doc, root+".error")
	if !ext.Resolved() || ext.Value == nil {
		return "", "", false
	}
	obj, isObj := ext.Value.(map[string]any)
	if !isObj {
		return fmt.Sprint(ext.Value), "", true
	}
	return scalarString(obj["code"]), scalarString(obj["description"]), true
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
