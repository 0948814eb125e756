package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// APIKey holds a credential for one of the servers. It renders redacted
// everywhere except through Reveal, so it can never leak into logs or
// serialized errors.
type APIKey string

const redacted = "*****[API KEY]*****"

func (k APIKey) String() string {
	return redacted
}

func (k APIKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}

// Reveal returns the underlying secret for use in request headers.
func (k APIKey) Reveal() string {
	return string(k)
}

// Zero clears the secret. Called once the run completes.
func (k *APIKey) Zero() {
	*k = ""
}

type Config struct {
	Sonarr    Server    `json:"sonarr" yaml:"sonarr" mapstructure:"sonarr"`
	Plex      Server    `json:"plex" yaml:"plex" mapstructure:"plex"`
	Jellyfin  Jellyfin  `json:"jellyfin" yaml:"jellyfin" mapstructure:"jellyfin"`
	Retention Retention `json:"retention" yaml:"retention" mapstructure:"retention"`
	Fetch     Fetch     `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
}

// Server is the shape every media server shares: somewhere to reach it and a
// key to authenticate with.
type Server struct {
	URL    string `json:"url" yaml:"url" mapstructure:"url"`
	APIKey APIKey `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
}

// Configured reports whether the server was present in the config file at all.
func (s Server) Configured() bool {
	return s.URL != ""
}

// Jellyfin needs a username on top of the server settings since played state
// is tracked per user.
type Jellyfin struct {
	Server `mapstructure:",squash"`
	User   string `json:"user" yaml:"user" mapstructure:"user"`
}

// Retention governs how long a season is kept after it qualifies for deletion.
type Retention struct {
	RetainTag      string `json:"retainTag" yaml:"retainTag" mapstructure:"retainTag"`
	RetainDuration string `json:"retainDuration" yaml:"retainDuration" mapstructure:"retainDuration"`
}

// Duration parses the configured retain duration.
func (r Retention) Duration() (time.Duration, error) {
	return ParseDuration(r.RetainDuration)
}

type Fetch struct {
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=1"`
}

// ParseDuration parses a duration string, additionally allowing a trailing
// "d" for days which time.ParseDuration stops short of. Retention windows are
// naturally spoken of in days ("14d").
func ParseDuration(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New("empty duration")
	}

	if days, ok := strings.CutSuffix(trimmed, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err == nil {
			return time.Duration(n * float64(24*time.Hour)), nil
		}
	}

	return time.ParseDuration(trimmed)
}

var (
	ErrNoWatchServer        = errors.New("one of plex or jellyfin must be configured")
	ErrMultipleWatchServers = errors.New("only one of plex or jellyfin may be configured")
)

// Validate checks the configuration before any network call is made.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if !c.Sonarr.Configured() {
		return errors.New("sonarr.url is required")
	}
	if c.Sonarr.APIKey == "" {
		return errors.New("sonarr.apiKey is required")
	}

	switch {
	case c.Plex.Configured() && c.Jellyfin.Configured():
		return ErrMultipleWatchServers
	case c.Plex.Configured():
		if c.Plex.APIKey == "" {
			return errors.New("plex.apiKey is required")
		}
	case c.Jellyfin.Configured():
		if c.Jellyfin.APIKey == "" {
			return errors.New("jellyfin.apiKey is required")
		}
		if c.Jellyfin.User == "" {
			return errors.New("jellyfin.user is required")
		}
	default:
		return ErrNoWatchServer
	}

	if _, err := c.Retention.Duration(); err != nil {
		return fmt.Errorf("retention.retainDuration: %w", err)
	}

	return nil
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}
