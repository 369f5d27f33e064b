package testsupport

import (
	"path/filepath"
	"testing"

	"sptnr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and placeholder credentials that pass ValidateSync and ValidateTrigger.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ProcessedAlbumsFile = filepath.Join(base, "processed_albums.txt")
	cfgVal.Navidrome.BaseURL = "http://127.0.0.1:4533"
	cfgVal.Navidrome.User = "admin"
	cfgVal.Navidrome.Password = "secret"
	cfgVal.Spotify.ClientID = "client-id"
	cfgVal.Spotify.ClientSecret = "client-secret"
	cfgVal.Web.Bind = "127.0.0.1:0"
	cfgVal.Web.APIKey = "test-key"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithNavidrome points the media server settings at baseURL.
func WithNavidrome(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Navidrome.BaseURL = baseURL
	}
}

// WithSpotify points the metadata API and token endpoint at test servers.
func WithSpotify(apiBaseURL, tokenURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Spotify.APIBaseURL = apiBaseURL
		b.cfg.Spotify.TokenURL = tokenURL
	}
}

// WithAPIKey sets the trigger shared secret; an empty key disables the check.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Web.APIKey = key
		b.cfg.Web.APIKeyEnabled = key != ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}
