package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNavidrome()
	c.normalizeSpotify()
	if err := c.normalizeWeb(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ProcessedAlbumsFile) == "" {
		c.Paths.ProcessedAlbumsFile = filepath.Join(c.Paths.DataDir, defaultProcessedAlbumsName)
	}
	if c.Paths.ProcessedAlbumsFile, err = expandPath(c.Paths.ProcessedAlbumsFile); err != nil {
		return fmt.Errorf("paths.processed_albums_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeNavidrome() {
	c.Navidrome.BaseURL = strings.TrimSpace(c.Navidrome.BaseURL)
	if c.Navidrome.BaseURL == "" {
		if value, ok := os.LookupEnv("NAV_BASE_URL"); ok {
			c.Navidrome.BaseURL = strings.TrimSpace(value)
		}
	}
	c.Navidrome.User = strings.TrimSpace(c.Navidrome.User)
	if c.Navidrome.User == "" {
		if value, ok := os.LookupEnv("NAV_USER"); ok {
			c.Navidrome.User = strings.TrimSpace(value)
		}
	}
	if c.Navidrome.Password == "" {
		if value, ok := os.LookupEnv("NAV_PASS"); ok {
			c.Navidrome.Password = value
		}
	}
	if c.Navidrome.Timeout <= 0 {
		c.Navidrome.Timeout = defaultNavidromeTimeout
	}
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Spotify.ClientID = strings.TrimSpace(value)
		}
	}
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Spotify.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Spotify.APIBaseURL = strings.TrimSpace(c.Spotify.APIBaseURL)
	if c.Spotify.APIBaseURL == "" {
		c.Spotify.APIBaseURL = defaultSpotifyAPIBaseURL
	}
	if !strings.HasSuffix(c.Spotify.APIBaseURL, "/") {
		c.Spotify.APIBaseURL += "/"
	}
	c.Spotify.TokenURL = strings.TrimSpace(c.Spotify.TokenURL)
	if c.Spotify.TokenURL == "" {
		c.Spotify.TokenURL = defaultSpotifyTokenURL
	}
	if c.Spotify.Timeout <= 0 {
		c.Spotify.Timeout = defaultSpotifyTimeout
	}
}

func (c *Config) normalizeWeb() error {
	c.Web.Bind = strings.TrimSpace(c.Web.Bind)
	if c.Web.Bind == "" {
		c.Web.Bind = defaultWebBind
	}
	c.Web.APIKey = strings.TrimSpace(c.Web.APIKey)
	if c.Web.APIKey == "" {
		if value, ok := os.LookupEnv("WEB_API_KEY"); ok {
			c.Web.APIKey = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("ENABLE_WEB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("ENABLE_WEB_API_KEY: invalid boolean %q", value)
		}
		c.Web.APIKeyEnabled = enabled
	}
	c.Web.JobBinary = strings.TrimSpace(c.Web.JobBinary)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
