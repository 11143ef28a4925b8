package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/tanami-dev/tanami/internal/client"
	"github.com/tanami-dev/tanami/internal/config"
	"github.com/tanami-dev/tanami/internal/logger"
	"github.com/tanami-dev/tanami/internal/session"
	"github.com/tanami-dev/tanami/internal/storage"
)

// Verbose turns on debug logging to stderr. Set by the root --verbose flag.
var Verbose bool

// Env is everything a command needs to talk to the backend
type Env struct {
	Config  *config.Config
	Client  *client.Client
	Session *session.Session
	Logger  zerolog.Logger

	close func() error
}

// Close releases the storage backend
func (e *Env) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// LoadEnv reads configuration, opens storage and restores the session
func LoadEnv(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if Verbose {
		level = "debug"
	}
	log := logger.New(os.Stderr, level, "console")

	stores, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	env := NewEnv(cfg, stores.Tokens, stores.Users, log)
	env.close = stores.Close

	if err := env.Session.Init(ctx); err != nil {
		_ = stores.Close()
		return nil, err
	}

	return env, nil
}

// NewEnv wires a client and session over the given stores without touching
// the filesystem or the keyring
func NewEnv(cfg *config.Config, tokens, users storage.Store, log zerolog.Logger) *Env {
	apiClient := client.New(cfg.API.URL, tokens,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(log),
	)

	return &Env{
		Config:  cfg,
		Client:  apiClient,
		Session: session.New(apiClient, users, session.WithLogger(log)),
		Logger:  log,
	}
}

// RunOption injects dependencies into a command run
type RunOption func(*runConfig)

type runConfig struct {
	env            *Env
	out            io.Writer
	in             io.Reader
	passwordPrompt func() (string, error)
	rolePrompt     func() (string, error)
	interactive    bool
}

// WithEnv uses env instead of loading one from the environment
func WithEnv(env *Env) RunOption {
	return func(rc *runConfig) {
		rc.env = env
	}
}

// WithOutput redirects command output
func WithOutput(w io.Writer) RunOption {
	return func(rc *runConfig) {
		rc.out = w
	}
}

// WithInput replaces stdin
func WithInput(r io.Reader, interactive bool) RunOption {
	return func(rc *runConfig) {
		rc.in = r
		rc.interactive = interactive
	}
}

// WithPasswordPrompt replaces the terminal password prompt
func WithPasswordPrompt(prompt func() (string, error)) RunOption {
	return func(rc *runConfig) {
		rc.passwordPrompt = prompt
	}
}

// WithRolePrompt replaces the interactive role selector
func WithRolePrompt(prompt func() (string, error)) RunOption {
	return func(rc *runConfig) {
		rc.rolePrompt = prompt
	}
}

// run resolves options, loading an Env when none was injected, and calls fn
func run(ctx context.Context, opts []RunOption, fn func(rc *runConfig) error) error {
	rc := &runConfig{
		out:            os.Stdout,
		in:             os.Stdin,
		passwordPrompt: readPassword,
		rolePrompt:     selectRole,
		interactive:    isTerminal(),
	}
	for _, opt := range opts {
		opt(rc)
	}

	if rc.env == nil {
		env, err := LoadEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		rc.env = env
	}

	return fn(rc)
}

// explain adds a hint to errors a user can fix themselves
func explain(err error) error {
	switch {
	case client.IsStatus(err, http.StatusUnauthorized):
		return fmt.Errorf("%w\nRun 'tanami login' first", err)
	case client.IsStatus(err, http.StatusForbidden):
		return fmt.Errorf("%w\nYour account role may not allow this", err)
	default:
		return err
	}
}
