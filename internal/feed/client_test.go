package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactlink/pulse/pkg/models"
)

func TestClientFetchPage(t *testing.T) {
	var gotAuth, gotCursor string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCursor = r.URL.Query().Get("cursor")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": "p1", "type": "project", "title": "Solar kiosks", "author_id": "u1"},
				{"id": "x1", "type": "something_new", "title": "Unknown kind"}
			],
			"next_cursor": "abc123"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok-1")
	page, err := client.FetchPage(context.Background(), "cur-0")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "cur-0", gotCursor)
	assert.Equal(t, "abc123", page.NextCursor)
	require.Len(t, page.Items, 2)
	assert.Equal(t, models.ContentProject, page.Items[0].Type)
	// Types from newer servers fold into the catch-all bucket.
	assert.Equal(t, models.ContentOther, page.Items[1].Type)
}

func TestClientFetchPageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").FetchPage(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "feed unavailable")
}

func TestClientOmitsEmptyAuth(t *testing.T) {
	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").FetchPage(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, sawAuth)
}
