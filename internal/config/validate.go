package config

import (
	"errors"
	"fmt"
	"strings"

	"sptnr/internal/services"
)

// Validate ensures the settings shared by every binary are usable. Role
// specific credentials are checked by ValidateSync and ValidateTrigger.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

// ValidateSync checks everything the sync job needs before it talks to either API.
func (c *Config) ValidateSync() error {
	if err := ValidateBaseURL(c.Navidrome.BaseURL); err != nil {
		return err
	}
	if c.Navidrome.User == "" {
		return missing("navidrome.user", "NAV_USER")
	}
	if c.Navidrome.Password == "" {
		return missing("navidrome.password", "NAV_PASS")
	}
	if c.Spotify.ClientID == "" {
		return missing("spotify.client_id", "SPOTIFY_CLIENT_ID")
	}
	if c.Spotify.ClientSecret == "" {
		return missing("spotify.client_secret", "SPOTIFY_CLIENT_SECRET")
	}
	return nil
}

// ValidateTrigger checks the trigger daemon settings.
func (c *Config) ValidateTrigger() error {
	if c.Web.Bind == "" {
		return services.Wrap(services.ErrConfiguration, "config", "web", "web.bind must be set", nil)
	}
	if c.Web.APIKeyEnabled && c.Web.APIKey == "" {
		return missing("web.api_key", "WEB_API_KEY")
	}
	return nil
}

// ValidateBaseURL enforces the accepted media server URL shape: an http or
// https scheme and no trailing slash.
func ValidateBaseURL(raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return missing("navidrome.base_url", "NAV_BASE_URL")
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return services.Wrap(services.ErrConfiguration, "config", "navidrome.base_url", "URL must start with 'http://' or 'https://'", nil)
	}
	if strings.HasSuffix(value, "/") {
		return services.Wrap(services.ErrConfiguration, "config", "navidrome.base_url", "URL must not end with a trailing slash", nil)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Navidrome.Timeout <= 0 {
		return errors.New("navidrome.timeout must be positive")
	}
	if c.Spotify.Timeout <= 0 {
		return errors.New("spotify.timeout must be positive")
	}
	return nil
}

func missing(key, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/sptnr/config.toml"
	}
	message := fmt.Sprintf("%s is required. Set %s or edit %s (create with 'sptnr config init')", key, env, defaultPath)
	return services.Wrap(services.ErrConfiguration, "config", "", message, nil)
}
