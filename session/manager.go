package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/errors"
	"github.com/bobinette/atelier/log"
)

const DefaultTimeout = 30 * time.Second

type Option func(*Manager)

func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.navigator = n }
}

func WithEntryPoint(path string) Option {
	return func(m *Manager) { m.entryPoint = path }
}

// WithTimeout bounds every call made to the auth API. Zero or less means
// no deadline besides the one of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func WithLogger(l log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager owns the authentication state of the process. There should be
// exactly one, built at start up and passed to whoever needs it.
type Manager struct {
	api   AuthAPI
	store Store

	navigator  Navigator
	entryPoint string
	timeout    time.Duration
	logger     log.Logger

	mu            sync.RWMutex
	authenticated bool
	user          *atelier.User
}

func NewManager(api AuthAPI, store Store, opts ...Option) (*Manager, error) {
	if api == nil {
		return nil, errors.New("session manager requires an auth API", errors.Programming())
	}
	if store == nil {
		return nil, errors.New("session manager requires a token store", errors.Programming())
	}

	m := &Manager{
		api:   api,
		store: store,

		navigator:  NavigatorFunc(func(string) {}),
		entryPoint: DefaultEntryPoint,
		timeout:    DefaultTimeout,
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}

	// Optimistic: the tokens are not checked against the server.
	tokens, err := store.Load()
	switch {
	case err != nil:
		m.logger.Errorf("could not load session tokens: %v", err)
	case tokens.Valid():
		m.authenticated = true
	case !tokens.empty():
		m.logger.Printf("discarding incomplete token pair")
		if err := store.Clear(); err != nil {
			m.logger.Errorf("could not clear session tokens: %v", err)
		}
	}

	return m, nil
}

func (m *Manager) mustBeInitialized() {
	if m == nil {
		panic("session: Manager used outside of its scope, build one with NewManager and pass it explicitly")
	}
}

// State is the single access point to the authentication state.
func (m *Manager) State() State {
	m.mustBeInitialized()

	m.mu.RLock()
	defer m.mu.RUnlock()

	state := State{Authenticated: m.authenticated}
	if m.user != nil {
		user := *m.user
		state.User = &user
	}
	return state
}

// Login authenticates against the API. Any failure leaves no session behind:
// both tokens are removed from the store and the state is cleared.
func (m *Manager) Login(ctx context.Context, email, password string) (State, error) {
	m.mustBeInitialized()

	ctx, cancel := m.deadline(ctx)
	defer cancel()

	res, err := m.api.Login(ctx, email, password)
	if err == nil {
		err = m.establish(res)
	}
	if err != nil {
		m.purge()
		m.logger.Debugf("login failed for %s: %v", email, err)
		return State{}, failure(err, "Login failed")
	}

	return m.State(), nil
}

// Register creates an account. It does not log the user in.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	m.mustBeInitialized()

	ctx, cancel := m.deadline(ctx)
	defer cancel()

	if err := m.api.Register(ctx, email, password); err != nil {
		return failure(err, "Registration failed")
	}
	return nil
}

// Logout clears the session and navigates to the entry point. It never
// fails and can be called without a session.
func (m *Manager) Logout() {
	m.mustBeInitialized()

	m.purge()
	m.navigator.Navigate(m.entryPoint)
}

// Token implements oauth2.TokenSource so that API clients can authenticate
// with the current session.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mustBeInitialized()

	if !m.State().Authenticated {
		return nil, errNotLoggedIn()
	}

	tokens, err := m.store.Load()
	if err != nil {
		return nil, errors.New("could not load session tokens", errors.WithCause(err))
	} else if !tokens.Valid() {
		return nil, errNotLoggedIn()
	}

	token := &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: tokens.RefreshToken,
	}
	if exp, ok := expiry(tokens.AccessToken); ok {
		token.Expiry = exp
	}
	return token, nil
}

// Expiry returns the expiration of the stored access token when it can be
// read from the token itself.
func (m *Manager) Expiry() (time.Time, bool) {
	m.mustBeInitialized()

	tokens, err := m.store.Load()
	if err != nil || !tokens.Valid() {
		return time.Time{}, false
	}
	return expiry(tokens.AccessToken)
}

func (m *Manager) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Manager) establish(res LoginResponse) error {
	if res.AccessToken == "" || res.RefreshToken == "" {
		return errors.New("Login response missing tokens", errors.Malformed())
	}
	if res.User == nil {
		return errors.New("Login response missing user", errors.Malformed())
	}

	err := m.store.Save(Tokens{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
	if err != nil {
		return errors.New("could not persist session", errors.WithCause(err))
	}

	user := *res.User

	m.mu.Lock()
	m.authenticated = true
	m.user = &user
	m.mu.Unlock()
	return nil
}

func (m *Manager) purge() {
	if err := m.store.Clear(); err != nil {
		m.logger.Errorf("could not clear session tokens: %v", err)
	}

	m.mu.Lock()
	m.authenticated = false
	m.user = nil
	m.mu.Unlock()
}

// failure gives err a human readable message, fallback when it has none.
func failure(err error, fallback string) error {
	if errors.MessageOr(err, "") != "" {
		return err
	}
	return errors.New(fallback, errors.WithCode(errors.CodeOf(err)), errors.WithCause(err))
}

func errNotLoggedIn() error {
	return errors.New("not logged in", errors.Unauthorized())
}
