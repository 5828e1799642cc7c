package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Price(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices/current/coingecko:stargaze", r.URL.Path)
		_, _ = w.Write([]byte(`{"coins":{"coingecko:stargaze":{"price":0.0123,"symbol":"STARS","timestamp":1700000000,"confidence":0.99}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	price, err := c.Price(context.Background(), "stargaze")
	require.NoError(t, err)
	assert.Equal(t, "0.0123", price.String())
}

func TestClient_Price_missingCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"coins":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Price(context.Background(), "stargaze")
	require.Error(t, err)
}

func TestClient_Price_badStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Price(context.Background(), "stargaze")
	require.Error(t, err)
}
