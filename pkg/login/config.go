package login

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"
)

// ===== Configuration =====

// sdkVersion is reported to the platform on deep links and authorize URLs.
const sdkVersion = "1.4.0"

// Endpoint hosts per environment.
const (
	productionAuthHost = "https://auth.ryde.com"
	sandboxAuthHost    = "https://sandbox-auth.ryde.com"
)

// LoginConfig holds the read-only settings a LoginManager and its
// authenticators consume. The zero value is not usable; ClientID and
// RedirectURL are required.
type LoginConfig struct {
	// ClientID is the application's registered client identifier.
	ClientID string `env:"RYDE_CLIENT_ID"`
	// RedirectURL is the registered callback the platform redirects to after
	// an attempt completes.
	RedirectURL string `env:"RYDE_REDIRECT_URL"`
	// NativeScheme is the URL scheme of the installed rider app.
	NativeScheme string `env:"RYDE_NATIVE_SCHEME" envDefault:"ryde"`
	// NativeAppID is the source-application identifier inbound deep-link
	// responses must carry to be accepted.
	NativeAppID string `env:"RYDE_NATIVE_APP_ID" envDefault:"com.ryde.rider"`
	// UseFallback gates whether a native attempt that finds the rider app
	// unavailable retries through a web grant.
	UseFallback bool `env:"RYDE_USE_FALLBACK" envDefault:"true"`
	// Sandbox selects the sandbox endpoint environment. It does not change
	// state-machine behavior.
	Sandbox bool `env:"RYDE_SANDBOX" envDefault:"false"`
}

// LoadLoginConfig fills a LoginConfig from RYDE_* environment variables and
// validates it.
func LoadLoginConfig() (LoginConfig, error) {
	var cfg LoginConfig
	if err := env.Parse(&cfg); err != nil {
		return LoginConfig{}, fmt.Errorf("parse login config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return LoginConfig{}, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and well formed.
func (c LoginConfig) Validate() error {
	if c.ClientID == "" {
		return errors.New("login config: client ID is required")
	}
	if c.RedirectURL == "" {
		return errors.New("login config: redirect URL is required")
	}
	if _, err := url.Parse(c.RedirectURL); err != nil {
		return fmt.Errorf("login config: invalid redirect URL: %w", err)
	}
	return nil
}

// authHost returns the authentication host for the configured environment.
func (c LoginConfig) authHost() string {
	if c.Sandbox {
		return sandboxAuthHost
	}
	return productionAuthHost
}

// Endpoint returns the OAuth endpoint pair for the configured environment.
func (c LoginConfig) Endpoint() oauth2.Endpoint {
	host := c.authHost()
	return oauth2.Endpoint{
		AuthURL:  host + "/oauth/v2/authorize",
		TokenURL: host + "/oauth/v2/token",
	}
}

// AuthorizeURL returns the authorize endpoint for the configured environment.
func (c LoginConfig) AuthorizeURL() string {
	return c.Endpoint().AuthURL
}
