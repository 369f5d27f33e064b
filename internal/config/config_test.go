package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sptnr/internal/config"
	"sptnr/internal/services"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NAV_BASE_URL", "NAV_USER", "NAV_PASS",
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET",
		"WEB_API_KEY", "ENABLE_WEB_API_KEY", config.EnvConfigPath,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigUsesEnvFallbacksAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("NAV_BASE_URL", "http://navidrome:4533")
	t.Setenv("NAV_USER", "admin")
	t.Setenv("NAV_PASS", "secret")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "shh")
	t.Setenv("WEB_API_KEY", "key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("expected absolute data dir, got %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.LogDir != filepath.Join(cfg.Paths.DataDir, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.ProcessedAlbumsFile != filepath.Join(cfg.Paths.DataDir, "processed_albums.txt") {
		t.Fatalf("unexpected processed albums file: %q", cfg.Paths.ProcessedAlbumsFile)
	}
	if cfg.Navidrome.BaseURL != "http://navidrome:4533" || cfg.Navidrome.User != "admin" || cfg.Navidrome.Password != "secret" {
		t.Fatalf("navidrome env fallbacks not applied: %+v", cfg.Navidrome)
	}
	if cfg.Spotify.ClientID != "id" || cfg.Spotify.ClientSecret != "shh" {
		t.Fatalf("spotify env fallbacks not applied: %+v", cfg.Spotify)
	}
	if !cfg.Web.APIKeyEnabled {
		t.Fatal("expected api key check enabled by default")
	}
	if cfg.Web.APIKey != "key" {
		t.Fatalf("expected WEB_API_KEY fallback, got %q", cfg.Web.APIKey)
	}
	if cfg.Web.Bind != "0.0.0.0:3333" {
		t.Fatalf("unexpected bind: %q", cfg.Web.Bind)
	}
	if err := cfg.ValidateSync(); err != nil {
		t.Fatalf("ValidateSync returned error: %v", err)
	}
	if err := cfg.ValidateTrigger(); err != nil {
		t.Fatalf("ValidateTrigger returned error: %v", err)
	}
}

func TestLoadFileValuesWinOverEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NAV_USER", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "sptnr.toml")
	content := `
[paths]
data_dir = "` + filepath.ToSlash(filepath.Join(dir, "state")) + `"

[navidrome]
base_url = "https://music.example.com"
user = "from-file"

[logging]
level = "DEBUG"
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Navidrome.User != "from-file" {
		t.Fatalf("expected file value to win, got %q", cfg.Navidrome.User)
	}
	if cfg.Paths.LogDir != filepath.Join(dir, "state", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized logging settings, got %+v", cfg.Logging)
	}
}

func TestLoadUsesConfigPathFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[web]\nbind = \"127.0.0.1:9999\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be loaded, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Web.Bind != "127.0.0.1:9999" {
		t.Fatalf("unexpected bind: %q", cfg.Web.Bind)
	}
}

func TestEnableWebAPIKeyEnvironment(t *testing.T) {
	cases := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{value: "True", want: true},
		{value: "False", want: false},
		{value: "0", want: false},
		{value: "f", want: false},
		{value: "FALSE", want: false},
		{value: "1", want: true},
		{value: "true", want: true},
		{value: "maybe", wantErr: true},
		{value: "off", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HOME", t.TempDir())
			t.Setenv("ENABLE_WEB_API_KEY", tc.value)
			cfg, _, _, err := config.Load("")
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error for invalid boolean")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if cfg.Web.APIKeyEnabled != tc.want {
				t.Fatalf("APIKeyEnabled = %v, want %v", cfg.Web.APIKeyEnabled, tc.want)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	cases := map[string]bool{
		"http://navidrome:4533":  true,
		"https://music.example":  true,
		"navidrome:4533":         false,
		"ftp://navidrome":        false,
		"http://navidrome:4533/": false,
		"":                       false,
	}
	for raw, ok := range cases {
		err := config.ValidateBaseURL(raw)
		if ok && err != nil {
			t.Fatalf("ValidateBaseURL(%q) returned error: %v", raw, err)
		}
		if !ok {
			if err == nil {
				t.Fatalf("ValidateBaseURL(%q) expected error", raw)
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error for %q, got %v", raw, err)
			}
		}
	}
}

func TestValidateSyncReportsMissingCredential(t *testing.T) {
	cfg := config.Default()
	cfg.Navidrome.BaseURL = "http://navidrome"
	cfg.Navidrome.User = "admin"
	cfg.Navidrome.Password = "pw"
	err := cfg.ValidateSync()
	if err == nil {
		t.Fatal("expected missing spotify credentials to fail")
	}
	if !strings.Contains(err.Error(), "SPOTIFY_CLIENT_ID") {
		t.Fatalf("expected env hint in error, got %v", err)
	}
}

func TestValidateTriggerRequiresKeyOnlyWhenEnabled(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateTrigger(); err == nil {
		t.Fatal("expected error when api key enabled without a key")
	}
	cfg.Web.APIKeyEnabled = false
	if err := cfg.ValidateTrigger(); err != nil {
		t.Fatalf("ValidateTrigger returned error: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "ENABLE_WEB_API_KEY overrides this when set. 0, f, F, false") {
		t.Fatalf("sample does not document ENABLE_WEB_API_KEY values:\n%s", data)
	}
}
