package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCompleter returns a canned completion or error
type mockCompleter struct {
	completion *Completion
	err        error
	calls      int
	got        []Message
}

func (m *mockCompleter) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	m.calls++
	m.got = messages
	return m.completion, m.err
}

func newTestRouter(completer Completer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(completer, zerolog.Nop()).Register(router.Group("/api"))
	return router
}

func postChat(t *testing.T, router *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), "body: %s", w.Body.String())
	return w, payload
}

func TestChat_InvalidMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `{"messages": []}`},
		{name: "missing field", body: `{}`},
		{name: "not an array", body: `{"messages": "halo"}`},
		{name: "null", body: `{"messages": null}`},
		{name: "malformed json", body: `{"messages": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mockCompleter{}
			w, payload := postChat(t, newTestRouter(completer), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid messages", payload["error"])
			assert.Zero(t, completer.calls, "provider must not be called")
		})
	}
}

func TestChat_MissingAPIKey(t *testing.T) {
	// A real provider with no key, so the check happens where production does it
	router := newTestRouter(NewProvider(ProviderConfig{}))

	w, payload := postChat(t, router, `{"messages": [{"role": "user", "content": "halo"}]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "GROQ_API_KEY not set", payload["error"])
	assert.NotEmpty(t, payload["setup"])
}

func TestChat_ProviderErrorPassthrough(t *testing.T) {
	completer := &mockCompleter{err: &ProviderError{
		StatusCode: http.StatusUnauthorized,
		Details:    json.RawMessage(`{"error": {"message": "invalid api key"}}`),
	}}

	w, payload := postChat(t, newTestRouter(completer), `{"messages": [{"role": "user", "content": "halo"}]}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Groq API Error", payload["error"])
	assert.Equal(t, map[string]any{"error": map[string]any{"message": "invalid api key"}}, payload["details"])
}

func TestChat_UnexpectedFailure(t *testing.T) {
	completer := &mockCompleter{err: errors.New("connection reset")}

	w, payload := postChat(t, newTestRouter(completer), `{"messages": [{"role": "user", "content": "halo"}]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", payload["error"])
	assert.Equal(t, "connection reset", payload["details"])
}

func TestChat_Success(t *testing.T) {
	completer := &mockCompleter{completion: &Completion{
		Content: "Gunakan pupuk kompos.",
		Model:   "llama-3.1-8b-instant",
		Usage:   json.RawMessage(`{"total_tokens": 42}`),
	}}

	w, payload := postChat(t, newTestRouter(completer), `{"messages": [{"role": "user", "content": "Pupuk apa untuk tomat?"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "assistant", payload["role"])
	assert.Equal(t, "Gunakan pupuk kompos.", payload["content"])
	assert.Equal(t, ProviderName, payload["provider"])
	assert.Equal(t, "llama-3.1-8b-instant", payload["model"])
	assert.Equal(t, map[string]any{"total_tokens": float64(42)}, payload["usage"])
	assert.Len(t, payload["id"], 26, "id should be a ULID")

	require.Len(t, completer.got, 1)
	assert.Equal(t, "Pupuk apa untuk tomat?", completer.got[0].Content)
}
