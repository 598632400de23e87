package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequest_SetsHeadersAndBody(t *testing.T) {
	var gotHeader http.Header
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/echo", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/", "s3cret", 0)
	body, status, err := c.SendRequest(context.Background(), map[string]string{"hello": "world"}, "/api/echo")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, c.IsSuccessStatusCode(status))
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, "world", gotBody["hello"])
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "s3cret", gotHeader.Get("X-Secret-Key"))
}

func TestSendRequest_NoSecretHeaderWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Secret-Key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "", 0)
	_, status, err := c.SendRequest(context.Background(), struct{}{}, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestSendRequest_NonSuccessStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "", 0)
	body, status, err := c.SendRequest(context.Background(), struct{}{}, "/x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, c.IsSuccessStatusCode(status))
	assert.NotEmpty(t, body)
}

func TestSendRequest_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewAPIClient(srv.URL, "", 0)
	_, _, err := c.SendRequest(ctx, struct{}{}, "/slow")
	require.Error(t, err)
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"total":3}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "", time.Second)
	body, status, err := c.Get(context.Background(), "/api/auth_stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	var out map[string]int
	require.NoError(t, c.ParseResponse(body, &out))
	assert.Equal(t, 3, out["total"])
}

func TestParseResponse_Invalid(t *testing.T) {
	c := NewAPIClient("http://localhost", "", 0)
	var out map[string]any
	err := c.ParseResponse([]byte("<html>"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestURL(t *testing.T) {
	c := NewAPIClient("http://auth.local:5003/", "", 0)
	assert.Equal(t, "http://auth.local:5003/api/process_frame", c.URL("/api/process_frame"))
	assert.Equal(t, "http://auth.local:5003/api/process_frame", c.URL("api/process_frame"))
	assert.Equal(t, "https://other/x", c.URL("https://other/x"))
}
