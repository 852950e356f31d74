package login

import (
	"context"
	"net/url"
)

// LoginType selects which authentication strategy a LoginManager constructs.
type LoginType int

const (
	// LoginTypeNative hands the attempt off to the installed rider app.
	LoginTypeNative LoginType = iota
	// LoginTypeImplicit uses an in-app web surface with the implicit grant.
	LoginTypeImplicit
	// LoginTypeAuthorizationCode uses an in-app web surface with the
	// authorization code grant plus a token exchange.
	LoginTypeAuthorizationCode
)

// String returns a human-readable name for the login type.
func (t LoginType) String() string {
	switch t {
	case LoginTypeNative:
		return "native"
	case LoginTypeImplicit:
		return "implicit"
	case LoginTypeAuthorizationCode:
		return "authorization_code"
	default:
		return "unknown"
	}
}

// AuthenticationResponse is the external event that terminates an attempt:
// a redirect or deep-link URL, or a dismissal of the presenting surface.
type AuthenticationResponse struct {
	// URL is the terminal redirect or deep-link URL, nil on dismissal.
	URL *url.URL
	// Dismissed reports that the rider closed the surface before completing.
	Dismissed bool
}

// Authenticator is one authentication strategy. The manager owns exactly one
// per attempt: Initiate begins the attempt and may fail synchronously;
// ConsumeResponse interprets the terminal event and is called at most once.
// ConsumeResponse is deterministic given its input.
type Authenticator interface {
	// LoginType identifies the strategy.
	LoginType() LoginType
	// Initiate begins the attempt on the given surface. A nil error means the
	// attempt is pending on an external event.
	Initiate(ctx context.Context, surface PresentationSurface) error
	// ConsumeResponse turns the terminal event into a token or an error from
	// the closed taxonomy. Exactly one of the results is non-nil.
	ConsumeResponse(ctx context.Context, resp AuthenticationResponse) (*AccessToken, error)
}
