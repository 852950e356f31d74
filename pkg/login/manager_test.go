package login

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface records presentations and dismissals.
type fakeSurface struct {
	presented []*url.URL
	dismissed int
}

func (s *fakeSurface) Present(u *url.URL) error {
	s.presented = append(s.presented, u)
	return nil
}

func (s *fakeSurface) Dismiss() {
	s.dismissed++
}

// fakeDispatcher scripts rider-app reachability.
type fakeDispatcher struct {
	canOpen bool
	openOK  bool
	opened  []*url.URL
}

func (d *fakeDispatcher) CanOpen(u *url.URL) bool {
	return d.canOpen
}

func (d *fakeDispatcher) Open(u *url.URL) bool {
	d.opened = append(d.opened, u)
	return d.openOK
}

// completionRecorder counts completion invocations.
type completionRecorder struct {
	calls int
	token *AccessToken
	err   error
}

func (r *completionRecorder) fn() LoginCompletion {
	return func(token *AccessToken, err error) {
		r.calls++
		r.token = token
		r.err = err
	}
}

func testConfig() LoginConfig {
	return LoginConfig{
		ClientID:     "client-123",
		RedirectURL:  "https://example.app/oauth/callback",
		NativeScheme: "ryde",
		NativeAppID:  "com.ryde.rider",
		UseFallback:  true,
	}
}

func newTestManager(t *testing.T, cfg LoginConfig, loginType LoginType, dispatcher AppDispatcher) *LoginManager {
	t.Helper()
	return NewLoginManager(nil, cfg, loginType, nil, dispatcher, nil)
}

func TestLoginSetsStateAndAuthenticatorPerType(t *testing.T) {
	tests := []struct {
		name      string
		loginType LoginType
		wantType  any
	}{
		{"native", LoginTypeNative, (*NativeAuthenticator)(nil)},
		{"implicit", LoginTypeImplicit, (*ImplicitAuthenticator)(nil)},
		{"authorization code", LoginTypeAuthorizationCode, (*AuthorizationCodeAuthenticator)(nil)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
			m := newTestManager(t, testConfig(), tc.loginType, dispatcher)
			surface := &fakeSurface{}
			rec := &completionRecorder{}

			m.Login(context.Background(), []Scope{ScopeProfile}, surface, rec.fn())

			assert.True(t, m.LoggingIn())
			assert.Equal(t, tc.loginType, m.LoginType())
			require.NotNil(t, m.authenticator)
			assert.IsType(t, tc.wantType, m.authenticator)
			assert.Zero(t, rec.calls)
		})
	}
}

func TestHandleOpenURLSourceMismatch(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("https://example.app/oauth/callback?access_token=tok")
	require.NoError(t, err)
	handled := m.HandleOpenURL(context.Background(), u, "com.imposter.app", nil)

	assert.False(t, handled)
	assert.True(t, m.LoggingIn(), "mismatched source must not mutate state")
	assert.NotNil(t, m.authenticator)
	assert.Zero(t, rec.calls)
}

func TestHandleOpenURLWrongLoginType(t *testing.T) {
	m := newTestManager(t, testConfig(), LoginTypeImplicit, nil)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("https://example.app/oauth/callback?access_token=tok")
	require.NoError(t, err)

	assert.False(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))
	assert.True(t, m.LoggingIn())
	assert.Zero(t, rec.calls)
}

func TestHandleOpenURLNoPendingLogin(t *testing.T) {
	m := newTestManager(t, testConfig(), LoginTypeNative, &fakeDispatcher{})
	u, err := url.Parse("https://example.app/oauth/callback?access_token=tok")
	require.NoError(t, err)

	assert.False(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))
}

func TestHandleOpenURLSuccess(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile, ScopeHistory}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("ryde://oauth/callback?access_token=tok-abc&expires_in=3600&scope=profile+history")
	require.NoError(t, err)
	handled := m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil)

	assert.True(t, handled)
	assert.False(t, m.LoggingIn())
	assert.Nil(t, m.authenticator)
	require.Equal(t, 1, rec.calls)
	require.NotNil(t, rec.token)
	assert.NoError(t, rec.err)
	assert.Equal(t, "tok-abc", rec.token.Token)
	assert.Equal(t, []Scope{ScopeProfile, ScopeHistory}, rec.token.Scopes)
}

func TestHandleOpenURLErrorPropagatesOnce(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("ryde://oauth/callback?error=access_denied")
	require.NoError(t, err)
	assert.True(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))

	require.Equal(t, 1, rec.calls)
	assert.Nil(t, rec.token)
	assert.ErrorIs(t, rec.err, ErrAccessDenied)
	assert.False(t, m.LoggingIn())

	// A second delivery of the same URL is no longer ours to handle.
	assert.False(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))
	assert.Equal(t, 1, rec.calls)
}

func TestDidBecomeActiveClearsStateIdempotently(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())
	require.True(t, m.LoggingIn())

	m.DidBecomeActive()
	assert.False(t, m.LoggingIn())
	assert.Nil(t, m.authenticator)
	assert.Zero(t, rec.calls, "abandonment must not fire completion")

	// Calling again with no pending attempt is safe.
	m.DidBecomeActive()
	assert.False(t, m.LoggingIn())
	assert.Zero(t, rec.calls)
}

func TestNativeFallbackPrivilegedScopesTargetsAuthorizationCode(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: false}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	surface := &fakeSurface{}
	rec := &completionRecorder{}

	m.Login(context.Background(), []Scope{ScopeProfile, ScopeRequest}, surface, rec.fn())

	assert.Equal(t, LoginTypeAuthorizationCode, m.LoginType())
	assert.True(t, m.LoggingIn(), "substitute attempt should be pending")
	assert.IsType(t, (*AuthorizationCodeAuthenticator)(nil), m.authenticator)
	require.Len(t, surface.presented, 1)
	assert.Equal(t, "code", surface.presented[0].Query().Get("response_type"))
	assert.Zero(t, rec.calls, "fallback must be invisible to the caller")
}

func TestNativeFallbackGeneralScopesTargetsImplicit(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: false}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	surface := &fakeSurface{}
	rec := &completionRecorder{}

	m.Login(context.Background(), []Scope{ScopeProfile, ScopePlaces}, surface, rec.fn())

	assert.Equal(t, LoginTypeImplicit, m.LoginType())
	assert.True(t, m.LoggingIn())
	assert.IsType(t, (*ImplicitAuthenticator)(nil), m.authenticator)
	require.Len(t, surface.presented, 1)
	assert.Equal(t, "token", surface.presented[0].Query().Get("response_type"))
	assert.Zero(t, rec.calls)
}

func TestNativeFallbackFromConsumedUnavailable(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	surface := &fakeSurface{}
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, surface, rec.fn())

	u, err := url.Parse("ryde://oauth/callback?error=unavailable")
	require.NoError(t, err)
	assert.True(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))

	assert.Equal(t, LoginTypeImplicit, m.LoginType())
	assert.True(t, m.LoggingIn())
	assert.Zero(t, rec.calls)
}

func TestFallbackDisabledPropagatesUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.UseFallback = false
	dispatcher := &fakeDispatcher{canOpen: false}
	m := newTestManager(t, cfg, LoginTypeNative, dispatcher)
	rec := &completionRecorder{}

	m.Login(context.Background(), []Scope{ScopeProfile, ScopeRequest}, &fakeSurface{}, rec.fn())

	assert.Equal(t, LoginTypeNative, m.LoginType())
	assert.False(t, m.LoggingIn())
	require.Equal(t, 1, rec.calls)
	assert.Nil(t, rec.token)
	assert.ErrorIs(t, rec.err, ErrUnavailable)
}

func TestSubstituteErrorPropagatesUntouched(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: false}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	surface := &fakeSurface{}
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, surface, rec.fn())
	require.Equal(t, LoginTypeImplicit, m.LoginType())

	m.HandleWebDismissal(context.Background())

	require.Equal(t, 1, rec.calls)
	assert.Nil(t, rec.token)
	assert.ErrorIs(t, rec.err, ErrCancelled)
	assert.False(t, m.LoggingIn())
}

func TestOverlappingLoginAbandonsPriorAttempt(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	first := &completionRecorder{}
	second := &completionRecorder{}

	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, first.fn())
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, second.fn())

	u, err := url.Parse("ryde://oauth/callback?access_token=tok")
	require.NoError(t, err)
	assert.True(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))

	assert.Zero(t, first.calls, "abandoned attempt must stay silent")
	require.Equal(t, 1, second.calls)
	assert.NotNil(t, second.token)
}

func TestHandleWebNavigationImplicitSuccess(t *testing.T) {
	m := newTestManager(t, testConfig(), LoginTypeImplicit, nil)
	surface := &fakeSurface{}
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, surface, rec.fn())

	authenticator, ok := m.authenticator.(*ImplicitAuthenticator)
	require.True(t, ok)
	u, err := url.Parse("https://example.app/oauth/callback")
	require.NoError(t, err)
	u.Fragment = "access_token=tok-web&expires_in=3600&state=" + authenticator.state

	assert.True(t, m.HandleWebNavigation(context.Background(), u))
	assert.False(t, m.LoggingIn())
	assert.Nil(t, m.authenticator)
	assert.Equal(t, 1, surface.dismissed)
	require.Equal(t, 1, rec.calls)
	require.NotNil(t, rec.token)
	assert.Equal(t, "tok-web", rec.token.Token)
}

func TestHandleWebNavigationIgnoresForeignURLs(t *testing.T) {
	m := newTestManager(t, testConfig(), LoginTypeImplicit, nil)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("https://auth.ryde.com/oauth/v2/authorize?step=2")
	require.NoError(t, err)

	assert.False(t, m.HandleWebNavigation(context.Background(), u))
	assert.True(t, m.LoggingIn())
	assert.Zero(t, rec.calls)
}

func TestHandleWebNavigationIgnoredForNative(t *testing.T) {
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := newTestManager(t, testConfig(), LoginTypeNative, dispatcher)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("https://example.app/oauth/callback?code=abc")
	require.NoError(t, err)

	assert.False(t, m.HandleWebNavigation(context.Background(), u))
	assert.True(t, m.LoggingIn())
}

func TestHandleWebDismissalCancelsPendingWebAttempt(t *testing.T) {
	m := newTestManager(t, testConfig(), LoginTypeImplicit, nil)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	m.HandleWebDismissal(context.Background())

	assert.False(t, m.LoggingIn())
	require.Equal(t, 1, rec.calls)
	assert.Nil(t, rec.token)
	assert.ErrorIs(t, rec.err, ErrCancelled)
}

func TestSuccessfulLoginSavesTokenToStore(t *testing.T) {
	store := NewMemoryTokenStore()
	dispatcher := &fakeDispatcher{canOpen: true, openOK: true}
	m := NewLoginManager(nil, testConfig(), LoginTypeNative, nil, dispatcher, store)
	rec := &completionRecorder{}
	m.Login(context.Background(), []Scope{ScopeProfile}, &fakeSurface{}, rec.fn())

	u, err := url.Parse("ryde://oauth/callback?access_token=tok-stored")
	require.NoError(t, err)
	require.True(t, m.HandleOpenURL(context.Background(), u, "com.ryde.rider", nil))

	saved, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-stored", saved.Token)
}
