package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanami-dev/tanami/internal/storage"
)

// failingStore errors on every operation
type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (failingStore) Set(string, string) error         { return errors.New("disk on fire") }
func (failingStore) Delete(string) error              { return errors.New("disk on fire") }

func TestToken_RoundTrip(t *testing.T) {
	store := storage.NewMemory()
	c := New("http://example.invalid", store)

	token, err := c.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "never-set token should be absent")

	require.NoError(t, c.SetToken("T"))

	token, err = c.Token()
	require.NoError(t, err)
	assert.Equal(t, "T", token)

	// A fresh client over the same storage is a reload
	reloaded := New("http://example.invalid", store)
	token, err = reloaded.Token()
	require.NoError(t, err)
	assert.Equal(t, "T", token)
}

func TestToken_Clear(t *testing.T) {
	store := storage.NewMemory()
	c := New("http://example.invalid", store)
	require.NoError(t, c.SetToken("T"))

	require.NoError(t, c.ClearToken())

	token, err := c.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	_, ok, _ := store.Get(storage.TokenKey)
	assert.False(t, ok, "token should be gone from storage too")

	// Clearing again is harmless
	require.NoError(t, c.ClearToken())
}

func TestToken_StorageFailure(t *testing.T) {
	c := New("http://example.invalid", failingStore{})

	err := c.SetToken("T")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save token")

	token, err := c.Token()
	require.Error(t, err)
	assert.Empty(t, token, "failed save must not leave a token in memory")
}

func TestDo_Headers(t *testing.T) {
	var mu sync.Mutex
	var authHeaders []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Trace"))
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := New(server.URL, storage.NewMemory())
	ctx := context.Background()

	// No token yet
	require.NoError(t, c.Do(ctx, http.MethodGet, "/ping", nil, nil, WithHeader("X-Trace", "yes")))

	require.NoError(t, c.SetToken("abc"))
	var out map[string]any
	require.NoError(t, c.Do(ctx, http.MethodGet, "/ping", nil, &out, WithHeader("X-Trace", "yes")))
	assert.Equal(t, true, out["ok"])

	require.NoError(t, c.ClearToken())
	require.NoError(t, c.Do(ctx, http.MethodGet, "/ping", nil, nil, WithHeader("X-Trace", "yes")))

	assert.Equal(t, []string{"", "Bearer abc", ""}, authHeaders)
}

func TestDo_JSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/echo", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	c := New(server.URL+"/", storage.NewMemory())

	var out map[string]any
	err := c.Do(context.Background(), http.MethodPost, "/api/echo", map[string]any{"crop_type": "padi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "padi", out["crop_type"])
}

func TestDo_APIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantBody    bool
	}{
		{
			name:        "json error field",
			status:      http.StatusBadRequest,
			body:        `{"error": "crop_type tidak dikenal"}`,
			wantMessage: "crop_type tidak dikenal",
			wantBody:    true,
		},
		{
			name:        "json message field",
			status:      http.StatusForbidden,
			body:        `{"message": "forbidden for buyers"}`,
			wantMessage: "forbidden for buyers",
			wantBody:    true,
		},
		{
			name:        "nested error object",
			status:      http.StatusTooManyRequests,
			body:        `{"error": {"message": "slow down"}}`,
			wantMessage: "slow down",
			wantBody:    true,
		},
		{
			name:        "plain text falls back to status text",
			status:      http.StatusBadGateway,
			body:        "<html>bad gateway</html>",
			wantMessage: "Bad Gateway",
		},
		{
			name:        "empty body",
			status:      http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := New(server.URL, storage.NewMemory())
			err := c.Get(context.Background(), "/x", nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "want *APIError, got %T", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			if tt.wantBody {
				assert.JSONEq(t, tt.body, string(apiErr.Body))
			} else {
				assert.Nil(t, apiErr.Body)
			}
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := New(server.URL, storage.NewMemory(), WithTimeout(50*time.Millisecond))

	err := c.Get(context.Background(), "/slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(server.URL, storage.NewMemory())
	err := c.Get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url, storage.NewMemory())
	err := c.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
