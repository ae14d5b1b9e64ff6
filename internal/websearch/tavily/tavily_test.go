package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_SendsQueryAndParsesResults(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []Result{
			{Title: "AER Directive 060", URL: "https://www.aer.ca/d060", Content: "venting and flaring"},
		}})
	}))
	defer srv.Close()

	c, err := New("key-1", srv.Client(), WithEndpoint(srv.URL))
	require.NoError(t, err)

	res, err := c.Search(context.Background(), "flaring limits alberta", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "AER Directive 060", res[0].Title)
	assert.Equal(t, "flaring limits alberta", got.Query)
	assert.Equal(t, 5, got.MaxResults)
}

func TestSearch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New("key-1", srv.Client(), WithEndpoint(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("", nil)
	assert.Error(t, err)
}
