package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanami-dev/tanami/internal/session"
	"github.com/tanami-dev/tanami/internal/storage"
)

func noPrompt(t *testing.T) func() (string, error) {
	return func() (string, error) {
		t.Error("unexpected prompt")
		return "", errors.New("unexpected prompt")
	}
}

func TestLoginCommand_Flags(t *testing.T) {
	cmd := NewLoginCmd()

	assert.Equal(t, "login", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("email"))
	assert.NotNil(t, cmd.Flags().Lookup("password"))
}

func TestLoginCommand_Success(t *testing.T) {
	env := newTestEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": loginRoute("petani"),
	})

	err := runLogin(context.Background(), "a@b.com", "x", env.opts(WithPasswordPrompt(noPrompt(t)))...)
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "Login successful")
	assert.Contains(t, env.out.String(), "Role: petani")
	assert.Equal(t, session.Authenticated, env.Session.State().Status)

	token, ok, _ := env.store.Get(storage.TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "T", token)
}

func TestLoginCommand_EnvCredentials(t *testing.T) {
	env := newTestEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": loginRoute("pembeli"),
	})
	t.Setenv("TANAMI_EMAIL", "env@b.com")
	t.Setenv("TANAMI_PASSWORD", "x")

	require.NoError(t, runLogin(context.Background(), "", "", env.opts()...))
	assert.Equal(t, "env@b.com", env.Session.State().User.Email)
}

func TestLoginCommand_PromptsForPassword(t *testing.T) {
	env := newTestEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": loginRoute("petani"),
	})
	t.Setenv("TANAMI_PASSWORD", "")

	prompted := false
	prompt := func() (string, error) {
		prompted = true
		return "x", nil
	}

	require.NoError(t, runLogin(context.Background(), "a@b.com", "", env.opts(WithPasswordPrompt(prompt))...))
	assert.True(t, prompted)
}

func TestLoginCommand_MissingEmail(t *testing.T) {
	t.Setenv("TANAMI_EMAIL", "")

	err := runLogin(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": loginRoute("petani"),
	})

	err := runLogin(context.Background(), "a@b.com", "wrong", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.Equal(t, session.Anonymous, env.Session.State().Status)
}

func TestRegisterCommand_PromptsForRole(t *testing.T) {
	var registered map[string]string
	env := newTestEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/register": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
			respondJSON(w, http.StatusCreated, map[string]any{"message": "ok"})
		},
		"POST /api/auth/login": loginRoute("petani"),
	})

	rolePrompt := func() (string, error) { return "petani", nil }

	err := runRegister(context.Background(), "new@b.com", "x", "", env.opts(WithRolePrompt(rolePrompt))...)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"email": "new@b.com", "password": "x", "role": "petani"}, registered)
	assert.True(t, env.Session.State().Authenticated())
	assert.Contains(t, env.out.String(), "Account created")
}

func TestRegisterCommand_UnknownRole(t *testing.T) {
	err := runRegister(context.Background(), "new@b.com", "x", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestLogoutCommand(t *testing.T) {
	env := newTestEnv(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": loginRoute("petani"),
	})
	require.NoError(t, env.Session.Login(context.Background(), "a@b.com", "x"))

	require.NoError(t, runLogout(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Logged out")

	_, ok, _ := env.store.Get(storage.TokenKey)
	assert.False(t, ok)
	_, ok, _ = env.store.Get(storage.UserKey)
	assert.False(t, ok)

	env.out.Reset()
	require.NoError(t, runLogout(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Not logged in")
}

func TestWhoamiCommand(t *testing.T) {
	env := newTestEnv(t, nil)

	require.NoError(t, runWhoami(context.Background(), FormatTable, env.opts()...))
	assert.Contains(t, env.out.String(), "Not logged in")

	// Log in by seeding storage, as a previous run would have
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": expiry.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.NoError(t, env.Client.SetToken(token))
	require.NoError(t, env.store.Set(storage.UserKey, `{"id":"1","email":"a@b.com","role":"petani"}`))

	reloaded := newTestEnvFrom(t, env)

	reloaded.out.Reset()
	require.NoError(t, runWhoami(context.Background(), FormatJSON, reloaded.opts()...))

	var id identity
	require.NoError(t, json.Unmarshal(reloaded.out.Bytes(), &id))
	assert.Equal(t, "authenticated", id.Status)
	assert.Equal(t, "a@b.com", id.Email)
	assert.Equal(t, "1", id.Subject)
	require.NotNil(t, id.ExpiresAt)
	assert.True(t, expiry.Equal(*id.ExpiresAt))
	assert.False(t, id.Expired)
}

func TestWhoamiCommand_OpaqueToken(t *testing.T) {
	var id identity
	inspectToken("not-a-jwt", &id)

	assert.Empty(t, id.Subject)
	assert.Nil(t, id.ExpiresAt)
}

// newTestEnvFrom starts a fresh session over env's storage, like a new
// process would
func newTestEnvFrom(t *testing.T, env *testEnv) *testEnv {
	t.Helper()

	fresh := NewEnv(env.Config, env.store, env.store, env.Logger)
	require.NoError(t, fresh.Session.Init(context.Background()))
	return &testEnv{Env: fresh, store: env.store, out: env.out}
}
