package login

import (
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ===== Access tokens =====

// AccessToken is the opaque result of a successful login attempt.
type AccessToken struct {
	// Token is the bearer token string issued by the platform.
	Token string
	// Expiry is the time at which the token lapses. Zero when the provider
	// did not report a lifetime.
	Expiry time.Time
	// Scopes are the scopes granted with the token. When the provider does
	// not echo them back this holds the requested scopes.
	Scopes []Scope
}

// Valid reports whether the token is non-empty and not expired.
func (t *AccessToken) Valid() bool {
	if t == nil || t.Token == "" {
		return false
	}
	return t.Expiry.IsZero() || t.Expiry.After(time.Now())
}

// tokenFromValues interprets decoded redirect parameters as a token payload.
// The second return reports whether the values contained a recognizable
// payload at all (either a token or an encoded error); when false the caller
// should look elsewhere, e.g. in the URL fragment.
func tokenFromValues(v url.Values) (*AccessToken, bool, error) {
	if err := ClassifyRedirectError(v.Get("error")); err != nil {
		return nil, true, err
	}
	raw := v.Get("access_token")
	if raw == "" {
		return nil, false, nil
	}
	token := &AccessToken{Token: raw, Scopes: ParseScopes(v.Get("scope"))}
	if ttl := v.Get("expires_in"); ttl != "" {
		secs, err := strconv.ParseInt(ttl, 10, 64)
		if err != nil {
			return nil, true, ErrInvalidResponse
		}
		token.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return token, true, nil
}

// ParseTokenFromURL extracts an access token or encoded error from a redirect
// URL, checking the query first and the fragment second. A URL carrying
// neither yields ErrInvalidResponse.
func ParseTokenFromURL(u *url.URL) (*AccessToken, error) {
	if u == nil {
		return nil, ErrInvalidResponse
	}
	if token, found, err := tokenFromValues(u.Query()); found {
		return token, err
	}
	if frag, err := url.ParseQuery(u.Fragment); err == nil {
		if token, found, ferr := tokenFromValues(frag); found {
			return token, ferr
		}
	}
	return nil, ErrInvalidResponse
}

// tokenFromOAuth2 bridges an exchanged oauth2 token into an AccessToken,
// attaching the scopes the attempt requested.
func tokenFromOAuth2(t *oauth2.Token, scopes []Scope) *AccessToken {
	return &AccessToken{
		Token:  t.AccessToken,
		Expiry: t.Expiry,
		Scopes: append([]Scope(nil), scopes...),
	}
}

// TokenStore persists the current access token. Implementations wrap the host
// platform's secure storage; the manager only needs save and retrieve.
type TokenStore interface {
	// Save stores the token, replacing any previous one.
	Save(token *AccessToken) error
	// Token returns the stored token, if any.
	Token() (*AccessToken, bool)
	// Clear removes the stored token.
	Clear()
}

// MemoryTokenStore is an in-process TokenStore, suitable for tests and for
// hosts that manage persistence themselves.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token *AccessToken
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Save stores the token.
func (s *MemoryTokenStore) Save(token *AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Token returns the stored token, if any.
func (s *MemoryTokenStore) Token() (*AccessToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != nil
}

// Clear removes the stored token.
func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
}
