package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type symbolBody struct {
	Symbol    string `json:"symbol" validate:"required,max=32"`
	SkipCache bool   `json:"skipCache"`
	Range     string `json:"range" default:"5d"`
}

func newJSONContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateRequestOK(t *testing.T) {
	var req symbolBody
	errs := ReadAndValidateRequest(newJSONContext(`{"symbol":"AAPL","skipCache":true}`), &req)
	require.Nil(t, errs)
	assert.Equal(t, "AAPL", req.Symbol)
	assert.True(t, req.SkipCache)
	assert.Equal(t, "5d", req.Range)
}

func TestReadAndValidateRequestMissingField(t *testing.T) {
	var req symbolBody
	errs := ReadAndValidateRequest(newJSONContext(`{"skipCache":true}`), &req)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_REQUIRED", errs[0].Code)
	assert.Equal(t, "symbol", errs[0].Field)
	assert.Equal(t, "symbol is required", errs[0].Message)
}

func TestReadAndValidateRequestBadJSON(t *testing.T) {
	var req symbolBody
	errs := ReadAndValidateRequest(newJSONContext(`{"symbol":`), &req)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_BIND", errs[0].Code)
	assert.Equal(t, "body", errs[0].Field)
}

func TestReadAndValidateRequestMax(t *testing.T) {
	var req symbolBody
	errs := ReadAndValidateRequest(newJSONContext(`{"symbol":"`+strings.Repeat("A", 40)+`"}`), &req)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_MAX", errs[0].Code)
	assert.Equal(t, "symbol must be at most 32 characters", errs[0].Message)
	assert.Equal(t, "32", errs[0].Params["max"])
}

func TestAppErrorResponseUsesStatus(t *testing.T) {
	c := newJSONContext(`{}`)
	rec := c.Response().Writer.(*httptest.ResponseRecorder)

	require.NoError(t, AppErrorResponse(c, UpstreamError("upstream unavailable")))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPSTREAM_ERROR")
}
