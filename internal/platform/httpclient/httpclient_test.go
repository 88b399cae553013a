package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fixed", r.Header.Get("X-Fixed"))
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"クロ"}`))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "nope", http.StatusTeapot)
		}
	}))
	defer ts.Close()

	c, err := New(ts.URL+"/", WithHeader("X-Fixed", "fixed"))
	require.NoError(t, err)

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "ok", nil, nil, &out))
	assert.Equal(t, "クロ", out.Name)

	require.NoError(t, c.DoJSON(context.Background(), http.MethodPost, "/empty", nil, map[string]int{"a": 1}, &out))

	err = c.DoJSON(context.Background(), http.MethodGet, "/missing", nil, nil, nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTeapot, httpErr.StatusCode)
	assert.Equal(t, "nope", httpErr.Body)
}

func TestResolve(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	_, err = c.resolve("/relative")
	assert.Error(t, err)

	got, err := c.resolve("https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", got)

	_, err = New("::not a url")
	assert.Error(t, err)
}
