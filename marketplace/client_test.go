package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Token(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "token(")
		assert.Equal(t, "stars1collection", req.Variables["collectionAddress"])
		assert.Equal(t, "42", req.Variables["id"])

		_, _ = w.Write([]byte(`{"data":{"token":{"id":"42","name":"Bad Kid #42","owner":"stars1seller","price":"100000000","rarityOrder":7}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	token, err := c.Token(context.Background(), "stars1collection", "42")
	require.NoError(t, err)
	assert.Equal(t, "Bad Kid #42", token.Name)
	assert.Equal(t, "100000000", token.Price)
	assert.Equal(t, 7, token.RarityOrder)
}

func TestClient_Token_notFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"token":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Token(context.Background(), "stars1collection", "42")
	require.Error(t, err)
}

func TestClient_Collection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"data": {
				"collection": {
					"id": "stars1collection",
					"name": "Bad Kids",
					"floorPrice": "90000000",
					"creator": {"id": "1", "address": "stars1creator"},
					"tokenCounts": {"listed": 120, "total": 10000}
				}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	collection, err := c.Collection(context.Background(), "stars1collection")
	require.NoError(t, err)
	assert.Equal(t, "Bad Kids", collection.Name)
	assert.Equal(t, 120, collection.TokenCounts.Listed)
}

func TestClient_Collection_badStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream error", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Collection(context.Background(), "stars1collection")
	require.Error(t, err)
}
