package login

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===== Implicit grant =====

// ImplicitAuthenticator performs login on an in-app web surface using the
// implicit grant: the authorize endpoint redirects straight back with the
// token in the URL fragment.
type ImplicitAuthenticator struct {
	logger *zap.Logger
	cfg    LoginConfig
	scopes []Scope
	state  string
}

// NewImplicitAuthenticator creates an implicit-grant authenticator for one
// attempt.
func NewImplicitAuthenticator(logger *zap.Logger, cfg LoginConfig, scopes []Scope) *ImplicitAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImplicitAuthenticator{
		logger: logger.Named("implicit"),
		cfg:    cfg,
		scopes: append([]Scope(nil), scopes...),
	}
}

// LoginType identifies the strategy.
func (a *ImplicitAuthenticator) LoginType() LoginType {
	return LoginTypeImplicit
}

// authorizeURL builds the authorize endpoint URL requesting a token directly.
func (a *ImplicitAuthenticator) authorizeURL() (*url.URL, error) {
	u, err := url.Parse(a.cfg.AuthorizeURL())
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("response_type", "token")
	q.Set("client_id", a.cfg.ClientID)
	q.Set("redirect_uri", a.cfg.RedirectURL)
	q.Set("scope", ScopeString(a.scopes))
	q.Set("state", a.state)
	q.Set("sdk", "go")
	q.Set("sdk_version", sdkVersion)
	u.RawQuery = q.Encode()
	return u, nil
}

// Initiate presents the web surface at the authorize endpoint with a fresh
// state parameter.
func (a *ImplicitAuthenticator) Initiate(ctx context.Context, surface PresentationSurface) error {
	if surface == nil {
		return ErrUnavailable
	}
	a.state = uuid.NewString()
	u, err := a.authorizeURL()
	if err != nil {
		a.logger.Error("authorize URL construction failed", zap.Error(err))
		return ErrMalformedRequest
	}
	if err := surface.Present(u); err != nil {
		a.logger.Error("failed to present login surface", zap.Error(err))
		return ErrUnavailable
	}
	a.logger.Info("presented implicit login", zap.String("scope", ScopeString(a.scopes)))
	return nil
}

// ConsumeResponse parses the terminal navigation's fragment for a token or
// encoded error. A dismissed surface yields ErrCancelled; a state mismatch
// yields ErrInvalidResponse.
func (a *ImplicitAuthenticator) ConsumeResponse(ctx context.Context, resp AuthenticationResponse) (*AccessToken, error) {
	if resp.Dismissed {
		a.logger.Info("login surface dismissed by rider")
		return nil, ErrCancelled
	}
	if resp.URL == nil {
		return nil, ErrInvalidResponse
	}
	frag, err := url.ParseQuery(resp.URL.Fragment)
	if err != nil {
		a.logger.Error("unparseable redirect fragment", zap.Error(err))
		return nil, ErrInvalidResponse
	}
	if frag.Get("state") != a.state {
		a.logger.Error("state mismatch on implicit redirect")
		return nil, ErrInvalidResponse
	}
	token, found, terr := tokenFromValues(frag)
	if terr != nil {
		a.logger.Error("implicit redirect rejected", zap.Error(terr))
		return nil, terr
	}
	if !found {
		return nil, ErrInvalidResponse
	}
	a.logger.Info("implicit login succeeded")
	return token, nil
}
