// Package session tracks who is logged in. It owns the cached user record,
// drives the client's token through login and logout, and tells observers
// about every transition.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tanami-dev/tanami/internal/client"
	"github.com/tanami-dev/tanami/internal/storage"
)

// Status is the coarse authentication state
type Status string

const (
	Initializing  Status = "initializing"
	Authenticated Status = "authenticated"
	Anonymous     Status = "anonymous"
)

// Hydration decides how a stored token becomes a user on Init
type Hydration int

const (
	// HydrateCached restores the user record saved at login. A token with no
	// saved record leaves the session anonymous.
	HydrateCached Hydration = iota
	// HydratePlaceholder treats any stored token as logged in, with an empty
	// user until the next login.
	HydratePlaceholder
)

// Routes the session navigates to after login and logout
const (
	HomeRoute  = "/"
	LoginRoute = "/login"
)

// State is a snapshot of the session
type State struct {
	Status  Status
	User    *client.User
	Loading bool
}

// Authenticated reports whether a user is logged in
func (s State) Authenticated() bool {
	return s.Status == Authenticated
}

// Navigator receives the route to show after a transition
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

// Gateway is the part of the API client the session drives
type Gateway interface {
	Token() (string, error)
	ClearToken() error
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, email, password, role string) (map[string]any, error)
}

// Option configures a Session
type Option func(*Session)

// WithHydration sets how Init resolves a stored token
func WithHydration(h Hydration) Option {
	return func(s *Session) {
		s.hydration = h
	}
}

// WithNavigator sets the navigation target for login and logout
func WithNavigator(nav Navigator) Option {
	return func(s *Session) {
		if nav != nil {
			s.navigator = nav
		}
	}
}

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is the auth state machine shared by every screen or command
type Session struct {
	gateway   Gateway
	users     storage.Store
	hydration Hydration
	navigator Navigator
	logger    zerolog.Logger

	// ops serializes Init, Login, Register and Logout
	ops sync.Mutex

	mu          sync.RWMutex
	state       State
	initialized bool
	observers   map[int]func(State)
	nextID      int
	seq         uint64
}

// New creates a session in the Initializing state. users holds the cached
// user record under storage.UserKey.
func New(gateway Gateway, users storage.Store, opts ...Option) *Session {
	s := &Session{
		gateway:   gateway,
		users:     users,
		hydration: HydrateCached,
		navigator: noopNavigator{},
		logger:    zerolog.Nop(),
		state:     State{Status: Initializing, Loading: true},
		observers: make(map[int]func(State)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the current snapshot
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every transition. The
// returned function removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Init resolves the stored token into a state. Only the first call does any
// work.
func (s *Session) Init(ctx context.Context) error {
	s.ops.Lock()
	ev, err := s.initialize(ctx)
	s.ops.Unlock()

	s.dispatch(ev)
	return err
}

func (s *Session) initialize(ctx context.Context) (*event, error) {
	s.mu.RLock()
	done := s.initialized
	s.mu.RUnlock()
	if done {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := State{Status: Anonymous}

	token, err := s.gateway.Token()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read stored token")
	}

	if token != "" {
		user, err := s.hydrate()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to load cached user")
		}
		if user != nil {
			next = State{Status: Authenticated, User: user}
		}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	return s.apply(next, ""), nil
}

func (s *Session) hydrate() (*client.User, error) {
	user, err := s.loadUser()
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	s.logger.Warn().
		Str("hydration", s.hydration.String()).
		Msg("Stored token has no cached user record")

	if s.hydration == HydratePlaceholder {
		return &client.User{}, nil
	}
	return nil, nil
}

// Login authenticates and caches the user. On error the state is unchanged
// and no token is left behind.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.ops.Lock()
	ev, err := s.login(ctx, email, password)
	s.ops.Unlock()

	s.dispatch(ev)
	return err
}

func (s *Session) login(ctx context.Context, email, password string) (*event, error) {
	resp, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := client.User{ID: resp.User.ID, Email: resp.User.Email, Role: resp.User.Role}
	if err := s.saveUser(user); err != nil {
		if clearErr := s.gateway.ClearToken(); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
		return nil, err
	}

	s.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("Logged in")

	return s.apply(State{Status: Authenticated, User: &user}, HomeRoute), nil
}

// Register creates the account and then logs in with the same credentials
func (s *Session) Register(ctx context.Context, email, password, role string) error {
	s.ops.Lock()
	ev, err := s.register(ctx, email, password, role)
	s.ops.Unlock()

	s.dispatch(ev)
	return err
}

func (s *Session) register(ctx context.Context, email, password, role string) (*event, error) {
	if _, err := s.gateway.Register(ctx, email, password, role); err != nil {
		return nil, err
	}
	return s.login(ctx, email, password)
}

// Logout forgets the token and cached user. Calling it while logged out is a
// no-op apart from the navigation.
func (s *Session) Logout() error {
	s.ops.Lock()
	var errs []error
	if err := s.gateway.ClearToken(); err != nil {
		errs = append(errs, err)
	}
	if err := s.users.Delete(storage.UserKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete cached user: %w", err))
	}
	ev := s.apply(State{Status: Anonymous}, LoginRoute)
	s.ops.Unlock()

	s.dispatch(ev)
	return errors.Join(errs...)
}

func (s *Session) loadUser() (*client.User, error) {
	raw, ok, err := s.users.Get(storage.UserKey)
	if err != nil || !ok {
		return nil, err
	}

	var user client.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to parse cached user: %w", err)
	}
	return &user, nil
}

func (s *Session) saveUser(user client.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.users.Set(storage.UserKey, string(data)); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}
	return nil
}

// event is a transition that still has to be announced. It is built while
// ops is held and dispatched after ops is released, so observers and the
// navigator may call back into the session.
type event struct {
	seq       uint64
	state     State
	route     string
	observers []func(State)
}

// apply replaces the state and captures who to tell about it
func (s *Session) apply(next State, route string) *event {
	next.Loading = false

	s.mu.Lock()
	previous := s.state.Status
	s.state = next
	s.seq++
	seq := s.seq
	observers := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	if previous != next.Status {
		s.logger.Info().
			Str("from", string(previous)).
			Str("to", string(next.Status)).
			Msg("Session state changed")
	}

	return &event{seq: seq, state: next, route: route, observers: observers}
}

// dispatch notifies observers, then navigates. It stops as soon as a later
// transition supersedes ev, which happens when an observer calls back into
// the session.
func (s *Session) dispatch(ev *event) {
	if ev == nil {
		return
	}
	for _, fn := range ev.observers {
		if s.superseded(ev) {
			return
		}
		fn(ev.state.clone())
	}
	if ev.route != "" && !s.superseded(ev) {
		s.navigator.Navigate(ev.route)
	}
}

func (s *Session) superseded(ev *event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq != ev.seq
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (h Hydration) String() string {
	switch h {
	case HydrateCached:
		return "cached"
	case HydratePlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("Hydration(%d)", int(h))
	}
}
