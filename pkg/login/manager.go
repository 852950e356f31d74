package login

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/julien040/go-ternary"
	"go.uber.org/zap"
)

// ===== Login manager =====

// LoginCompletion receives the outcome of a login attempt. Exactly one of the
// arguments is non-nil, and the callback fires at most once per attempt.
// Attempts abandoned on app resume fire it zero times.
type LoginCompletion func(token *AccessToken, err error)

// completionOnce wraps a completion callback in a single-resolution guard so
// a double fire is structurally impossible.
type completionOnce struct {
	once sync.Once
	fn   LoginCompletion
}

func (c *completionOnce) resolve(token *AccessToken, err error) {
	if c == nil || c.fn == nil {
		return
	}
	c.once.Do(func() {
		c.fn(token, err)
	})
}

// LoginManager coordinates one login attempt at a time against the Ryde
// platform. It constructs the authenticator matching its current login type,
// tracks the in-flight attempt, routes external re-entry events to the
// authenticator, and applies the native-to-web fallback policy.
//
// Whenever an attempt is active the authenticator is non-nil and LoggingIn
// reports true; both are cleared together on every termination path.
type LoginManager struct {
	mu sync.Mutex

	logger     *zap.Logger
	cfg        LoginConfig
	registry   *Registry
	dispatcher AppDispatcher
	store      TokenStore

	loginType     LoginType
	authenticator Authenticator
	loggingIn     bool
	scopes        []Scope
	surface       PresentationSurface
	completion    *completionOnce
}

// NewLoginManager creates a manager that starts attempts with the given login
// type. The registry, dispatcher, and store may be nil when the host does not
// use them; a nil logger is replaced with a no-op logger.
func NewLoginManager(logger *zap.Logger, cfg LoginConfig, loginType LoginType, registry *Registry, dispatcher AppDispatcher, store TokenStore) *LoginManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginManager{
		logger:     logger.Named("login_manager"),
		cfg:        cfg,
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		loginType:  loginType,
	}
}

// LoginType returns the manager's current login type. It changes only as an
// observable side effect of fallback.
func (m *LoginManager) LoginType() LoginType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginType
}

// LoggingIn reports whether a login attempt is currently active.
func (m *LoginManager) LoggingIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggingIn
}

// newAuthenticator constructs the authenticator variant for the current
// login type. Callers hold m.mu.
func (m *LoginManager) newAuthenticator(scopes []Scope) Authenticator {
	switch m.loginType {
	case LoginTypeNative:
		return NewNativeAuthenticator(m.logger, m.cfg, m.dispatcher, scopes)
	case LoginTypeImplicit:
		return NewImplicitAuthenticator(m.logger, m.cfg, scopes)
	case LoginTypeAuthorizationCode:
		return NewAuthorizationCodeAuthenticator(m.logger, m.cfg, scopes)
	default:
		return nil
	}
}

// Login begins a login attempt requesting the given scopes. If an attempt is
// already active its authenticator is discarded and its completion never
// fires; the new attempt takes over. The completion callback fires at most
// once, with exactly one of token or error non-nil. Initiation may resolve
// synchronously (for example when the rider app is unavailable and fallback
// is disabled) or leave the attempt pending on an external event.
func (m *LoginManager) Login(ctx context.Context, scopes []Scope, surface PresentationSurface, completion LoginCompletion) {
	m.login(ctx, scopes, surface, &completionOnce{fn: completion})
}

// login is the shared attempt body, reused by fallback so the caller's
// single-resolution guard spans the whole chain.
func (m *LoginManager) login(ctx context.Context, scopes []Scope, surface PresentationSurface, completion *completionOnce) {
	m.mu.Lock()
	if m.loggingIn {
		m.logger.Warn("abandoning in-flight login attempt",
			zap.Stringer("login_type", m.loginType))
		m.clearLocked()
	}
	m.scopes = append([]Scope(nil), scopes...)
	m.surface = surface
	m.completion = completion
	m.authenticator = m.newAuthenticator(m.scopes)
	m.loggingIn = true
	authenticator := m.authenticator
	m.mu.Unlock()

	if m.registry != nil {
		m.registry.Activate(m)
	}
	m.logger.Info("login attempt started",
		zap.Stringer("login_type", authenticator.LoginType()),
		zap.String("scope", ScopeString(scopes)))

	if err := authenticator.Initiate(ctx, surface); err != nil {
		m.finish(ctx, nil, err)
	}
}

// HandleOpenURL is the native re-entry point, called by the host when the
// application is reopened with a URL. It returns false without mutating state
// unless a native attempt is pending and sourceApplication matches the
// configured rider app identifier; the URL is simply not ours to handle. On a
// match it consumes the response, clears the attempt, and finalizes with
// either the completion callback or a fallback retry. The annotation argument
// mirrors the host delegate signature and is not inspected.
func (m *LoginManager) HandleOpenURL(ctx context.Context, u *url.URL, sourceApplication string, annotation any) bool {
	m.mu.Lock()
	if !m.loggingIn || m.authenticator == nil || m.loginType != LoginTypeNative {
		m.mu.Unlock()
		return false
	}
	if sourceApplication != m.cfg.NativeAppID {
		m.mu.Unlock()
		m.logger.Debug("ignoring URL from unexpected source application",
			zap.String("source_application", sourceApplication))
		return false
	}
	authenticator := m.authenticator
	m.mu.Unlock()

	token, err := authenticator.ConsumeResponse(ctx, AuthenticationResponse{URL: u})
	m.finish(ctx, token, err)
	return true
}

// HandleWebNavigation is the web-surface re-entry point, called when the
// surface navigates. It returns false unless a web attempt is pending and the
// URL is on the configured redirect; otherwise it consumes the navigation,
// dismisses the surface, clears the attempt, and finalizes.
func (m *LoginManager) HandleWebNavigation(ctx context.Context, u *url.URL) bool {
	m.mu.Lock()
	if !m.loggingIn || m.authenticator == nil || m.loginType == LoginTypeNative {
		m.mu.Unlock()
		return false
	}
	if u == nil || !m.isRedirect(u) {
		m.mu.Unlock()
		return false
	}
	authenticator := m.authenticator
	surface := m.surface
	m.mu.Unlock()

	token, err := authenticator.ConsumeResponse(ctx, AuthenticationResponse{URL: u})
	if surface != nil {
		surface.Dismiss()
	}
	m.finish(ctx, token, err)
	return true
}

// HandleWebDismissal is called when the rider closes the web surface before
// the attempt completes. A pending web attempt finalizes with ErrCancelled.
func (m *LoginManager) HandleWebDismissal(ctx context.Context) {
	m.mu.Lock()
	if !m.loggingIn || m.authenticator == nil || m.loginType == LoginTypeNative {
		m.mu.Unlock()
		return
	}
	authenticator := m.authenticator
	m.mu.Unlock()

	token, err := authenticator.ConsumeResponse(ctx, AuthenticationResponse{Dismissed: true})
	m.finish(ctx, token, err)
}

// DidBecomeActive is called when the host application regains foreground
// focus. A pending attempt is treated as abandoned: state is cleared and the
// completion callback never fires. Safe to call when no attempt is pending.
func (m *LoginManager) DidBecomeActive() {
	m.mu.Lock()
	if m.loggingIn {
		m.logger.Info("login attempt abandoned on app resume",
			zap.Stringer("login_type", m.loginType))
	}
	m.clearLocked()
	m.mu.Unlock()
	if m.registry != nil {
		m.registry.Deactivate(m)
	}
}

// isRedirect reports whether the URL is on the configured redirect. Callers
// hold m.mu.
func (m *LoginManager) isRedirect(u *url.URL) bool {
	redirect, err := url.Parse(m.cfg.RedirectURL)
	if err != nil {
		return false
	}
	return u.Scheme == redirect.Scheme &&
		u.Host == redirect.Host &&
		strings.HasPrefix(u.Path, redirect.Path)
}

// clearLocked drops the active attempt. Callers hold m.mu.
func (m *LoginManager) clearLocked() {
	m.authenticator = nil
	m.loggingIn = false
	m.scopes = nil
	m.surface = nil
	m.completion = nil
}

// finish is the single exit point for an attempt. It clears the in-flight
// state, applies the fallback policy, and otherwise resolves the caller's
// completion. A native attempt that found its medium unavailable retries once
// under the substitute type selected by scope tier, mutating the manager's
// login type; the substitute's own outcome propagates untouched.
func (m *LoginManager) finish(ctx context.Context, token *AccessToken, err error) {
	m.mu.Lock()
	wasNative := m.loginType == LoginTypeNative
	scopes := m.scopes
	surface := m.surface
	completion := m.completion
	m.clearLocked()

	if err != nil && errors.Is(err, ErrUnavailable) && wasNative && m.cfg.UseFallback {
		next := ternary.If(ContainsPrivilegedScope(scopes), LoginTypeAuthorizationCode, LoginTypeImplicit)
		m.loginType = next
		m.mu.Unlock()
		m.logger.Info("native login unavailable, falling back",
			zap.Stringer("login_type", next))
		m.login(ctx, scopes, surface, completion)
		return
	}
	m.mu.Unlock()

	if m.registry != nil {
		m.registry.Deactivate(m)
	}
	if err == nil && token != nil && m.store != nil {
		if serr := m.store.Save(token); serr != nil {
			m.logger.Error("failed to save access token", zap.Error(serr))
		}
	}
	if err != nil {
		m.logger.Info("login attempt failed", zap.Error(err))
	} else {
		m.logger.Info("login attempt succeeded")
	}
	completion.resolve(token, err)
}
