package login

import (
	"context"
	"net/url"

	"go.uber.org/zap"
)

// ===== Native hand-off =====

// NativeAuthenticator performs login by handing off to the installed rider
// app through a deep link. The app authenticates the rider and reopens the
// host application with a redirect URL carrying the token or an encoded
// error.
type NativeAuthenticator struct {
	logger     *zap.Logger
	cfg        LoginConfig
	dispatcher AppDispatcher
	scopes     []Scope
}

// NewNativeAuthenticator creates a native authenticator for one attempt.
func NewNativeAuthenticator(logger *zap.Logger, cfg LoginConfig, dispatcher AppDispatcher, scopes []Scope) *NativeAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NativeAuthenticator{
		logger:     logger.Named("native"),
		cfg:        cfg,
		dispatcher: dispatcher,
		scopes:     append([]Scope(nil), scopes...),
	}
}

// LoginType identifies the strategy.
func (a *NativeAuthenticator) LoginType() LoginType {
	return LoginTypeNative
}

// deepLink builds the rider-app authentication deep link.
func (a *NativeAuthenticator) deepLink() *url.URL {
	q := url.Values{}
	q.Set("client_id", a.cfg.ClientID)
	q.Set("scope", ScopeString(a.scopes))
	q.Set("redirect_uri", a.cfg.RedirectURL)
	q.Set("sdk", "go")
	q.Set("sdk_version", sdkVersion)
	return &url.URL{
		Scheme:   a.cfg.NativeScheme,
		Host:     "connect",
		RawQuery: q.Encode(),
	}
}

// Initiate opens the rider app with the authentication deep link. When the
// app is not installed or dispatch fails it resolves synchronously with
// ErrUnavailable, which the manager may convert into a fallback.
func (a *NativeAuthenticator) Initiate(ctx context.Context, surface PresentationSurface) error {
	u := a.deepLink()
	if a.dispatcher == nil || !a.dispatcher.CanOpen(u) {
		a.logger.Info("rider app not reachable", zap.String("scheme", a.cfg.NativeScheme))
		return ErrUnavailable
	}
	if !a.dispatcher.Open(u) {
		a.logger.Error("rider app dispatch failed", zap.String("url", u.String()))
		return ErrUnavailable
	}
	a.logger.Info("handed off to rider app", zap.String("scope", ScopeString(a.scopes)))
	return nil
}

// ConsumeResponse parses the redirect URL the rider app reopened us with,
// checking the query and then the fragment for a token or encoded error.
func (a *NativeAuthenticator) ConsumeResponse(ctx context.Context, resp AuthenticationResponse) (*AccessToken, error) {
	if resp.Dismissed || resp.URL == nil {
		return nil, ErrInvalidResponse
	}
	token, err := ParseTokenFromURL(resp.URL)
	if err != nil {
		a.logger.Error("rider app response rejected", zap.Error(err))
		return nil, err
	}
	a.logger.Info("rider app response accepted")
	return token, nil
}
