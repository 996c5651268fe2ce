package netx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRequest_WithBody(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.test/auth/request-code", map[string]string{"email": "a@b.c"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	b, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.c"}`, string(b))
}

func TestNewJSONRequest_WithoutBody(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodGet, "http://example.test/api/keys", nil)
	require.NoError(t, err)

	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Nil(t, req.Body)
}

func TestNewJSONRequest_UnencodableBody(t *testing.T) {
	_, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.test", make(chan int))
	require.ErrorContains(t, err, "encode request body")
}

func TestWriteJSONAndReadBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusTeapot, map[string]string{"detail": "short and stout"})
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	b, err := ReadBody(resp)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "short and stout", got["detail"])
}

func TestReadBody_IsBounded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", MaxBodySize+10))
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)

	b, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Len(t, b, MaxBodySize)
}
