package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "shopify_app"

// Config captures the environment-driven settings for the token generator.
// All variables share the SHOPIFY_APP_ prefix.
type Config struct {
	// APIKey is the app's client identifier from the partner dashboard.
	APIKey string `envconfig:"api_key"`

	// APISecret is the app's shared secret. It signs nothing itself; it is
	// the HMAC key for callback verification and the client secret for the
	// token exchange.
	APISecret string `envconfig:"api_secret"`

	// Scopes is the comma-separated access scope list requested at install
	// time, passed to the authorize URL verbatim.
	Scopes string `envconfig:"scopes" default:"read_products"`

	// RedirectURI is the absolute callback URL registered with the app.
	RedirectURI string `envconfig:"redirect_uri"`

	Port int `envconfig:"port" default:"8080"`

	// OnlineTokens requests the expiring per-user token variant during the
	// code exchange instead of the default offline token.
	OnlineTokens bool `envconfig:"online_tokens"`

	StateTTL      time.Duration `envconfig:"state_ttl" default:"10m"`
	SweepInterval time.Duration `envconfig:"sweep_interval" default:"1m"`
}

// Load reads .env (if present) and the process environment, then validates
// the result. Variables already set in the environment win over .env.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the startup invariants. A violation is fatal to the
// process; running with a misconfigured secret would silently accept forged
// callbacks.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("SHOPIFY_APP_API_KEY is required")
	}
	if c.APISecret == "" {
		return errors.New("SHOPIFY_APP_API_SECRET is required")
	}
	if c.APISecret == c.APIKey {
		return errors.New("SHOPIFY_APP_API_SECRET must differ from SHOPIFY_APP_API_KEY")
	}
	if c.RedirectURI == "" {
		return errors.New("SHOPIFY_APP_REDIRECT_URI is required")
	}
	if c.StateTTL <= 0 {
		return errors.New("SHOPIFY_APP_STATE_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SHOPIFY_APP_SWEEP_INTERVAL must be positive")
	}
	return nil
}
