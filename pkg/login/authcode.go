package login

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ===== Authorization code grant =====

// tokenExchanger performs the code-for-token exchange. Abstracted so the
// exchange can be faked in tests; the default wraps oauth2.Config.Exchange.
type tokenExchanger interface {
	exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

type oauth2Exchanger struct {
	cfg *oauth2.Config
}

func (e oauth2Exchanger) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return e.cfg.Exchange(ctx, code)
}

// AuthorizationCodeAuthenticator performs login on an in-app web surface
// using the authorization code grant: the authorize endpoint redirects back
// with a code, which is then exchanged for a token.
type AuthorizationCodeAuthenticator struct {
	logger    *zap.Logger
	cfg       LoginConfig
	scopes    []Scope
	state     string
	exchanger tokenExchanger
}

// NewAuthorizationCodeAuthenticator creates an authorization-code
// authenticator for one attempt, exchanging against the configured
// environment's token endpoint.
func NewAuthorizationCodeAuthenticator(logger *zap.Logger, cfg LoginConfig, scopes []Scope) *AuthorizationCodeAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	scopes = append([]Scope(nil), scopes...)
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		names = append(names, s.String())
	}
	return &AuthorizationCodeAuthenticator{
		logger: logger.Named("authorization_code"),
		cfg:    cfg,
		scopes: scopes,
		exchanger: oauth2Exchanger{cfg: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      names,
			Endpoint:    cfg.Endpoint(),
		}},
	}
}

// LoginType identifies the strategy.
func (a *AuthorizationCodeAuthenticator) LoginType() LoginType {
	return LoginTypeAuthorizationCode
}

// authorizeURL builds the authorize endpoint URL requesting a code.
func (a *AuthorizationCodeAuthenticator) authorizeURL() (*url.URL, error) {
	u, err := url.Parse(a.cfg.AuthorizeURL())
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("response_type", "code")
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
func (a *AuthorizationCodeAuthenticator) Initiate(ctx context.Context, surface PresentationSurface) error {
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
	a.logger.Info("presented authorization code login", zap.String("scope", ScopeString(a.scopes)))
	return nil
}

// ConsumeResponse extracts the authorization code from the terminal
// navigation and exchanges it for a token. A dismissed surface yields
// ErrCancelled; a state mismatch or missing code yields ErrInvalidResponse;
// a failed exchange yields ErrNetwork.
func (a *AuthorizationCodeAuthenticator) ConsumeResponse(ctx context.Context, resp AuthenticationResponse) (*AccessToken, error) {
	if resp.Dismissed {
		a.logger.Info("login surface dismissed by rider")
		return nil, ErrCancelled
	}
	if resp.URL == nil {
		return nil, ErrInvalidResponse
	}
	q := resp.URL.Query()
	if err := ClassifyRedirectError(q.Get("error")); err != nil {
		a.logger.Error("authorize redirect rejected", zap.Error(err))
		return nil, err
	}
	if q.Get("state") != a.state {
		a.logger.Error("state mismatch on code redirect")
		return nil, ErrInvalidResponse
	}
	code := q.Get("code")
	if code == "" {
		a.logger.Error("code redirect missing authorization code")
		return nil, ErrInvalidResponse
	}
	raw, err := a.exchanger.exchange(ctx, code)
	if err != nil {
		a.logger.Error("code exchange failed", zap.Error(err))
		return nil, ErrNetwork
	}
	a.logger.Info("authorization code login succeeded")
	return tokenFromOAuth2(raw, a.scopes), nil
}
