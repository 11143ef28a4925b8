package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tanami-dev/tanami/internal/config"
	"github.com/tanami-dev/tanami/internal/storage"
)

// testEnv is an Env over in-memory storage and a mock backend
type testEnv struct {
	*Env
	store *storage.Memory
	out   *bytes.Buffer
}

// opts returns the run options every command test needs
func (e *testEnv) opts(extra ...RunOption) []RunOption {
	return append([]RunOption{WithEnv(e.Env), WithOutput(e.out), WithInput(bytes.NewReader(nil), false)}, extra...)
}

// newTestEnv serves routes keyed by "METHOD /path". Unknown routes fail the
// test.
func newTestEnv(t *testing.T, routes map[string]http.HandlerFunc) *testEnv {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		API: config.APIConfig{
			URL:         server.URL,
			Timeout:     5 * time.Second,
			GeocoderURL: server.URL,
		},
		Chat: config.ChatConfig{URL: server.URL + "/api/chat"},
	}

	store := storage.NewMemory()
	env := NewEnv(cfg, store, store, zerolog.Nop())
	require.NoError(t, env.Session.Init(context.Background()))

	return &testEnv{Env: env, store: store, out: &bytes.Buffer{}}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loginRoute accepts password "x" for any email
func loginRoute(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Password != "x" {
			respondJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"token": "T",
			"user":  map[string]any{"id": "1", "email": req.Email, "role": role},
		})
	}
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
