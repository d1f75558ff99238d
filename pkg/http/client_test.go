package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchSetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "marketwatch-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "price", r.URL.Query().Get("modules"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("marketwatch-test"))
	body, err := c.Fetch(context.Background(), &RequestOptions{
		URL:         srv.URL,
		QueryParams: map[string][]string{"modules": {"price"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClientFetchReturnsStatusErrorWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found"}}}`))
	}))
	defer srv.Close()

	_, err := NewClient().Fetch(context.Background(), &RequestOptions{URL: srv.URL})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, string(se.Body), "Not Found")
}

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"symbol":"AAPL"}`))
	}))
	defer srv.Close()

	var out struct {
		Symbol string `json:"symbol"`
	}
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method: MethodPost,
		URL:    srv.URL,
		Body:   map[string]string{"symbol": "AAPL"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Symbol)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(WithTimeout(20*time.Millisecond)).Fetch(context.Background(), &RequestOptions{URL: srv.URL})
	assert.Error(t, err)
}
