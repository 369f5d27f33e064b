package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sptnr/internal/runlogs"
	"sptnr/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	logDir     string

	mu      sync.Mutex
	ratings map[string]string
	queries []string
}

// setupCLITestEnv starts fake Navidrome and Spotify servers and writes a
// config file pointing at them. tokenStatus 0 means the token exchange works.
func setupCLITestEnv(t *testing.T, tokenStatus int) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"NAV_BASE_URL", "NAV_USER", "NAV_PASS", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPTNR_CONFIG"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", t.TempDir())

	env := &cliTestEnv{ratings: map[string]string{}}

	navidrome := http.NewServeMux()
	navidrome.HandleFunc("/rest/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"subsonic-response":{"status":"ok"}}`))
	})
	navidrome.HandleFunc("/rest/getAlbum", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "al1" {
			_, _ = w.Write([]byte(`{"subsonic-response":{"status":"failed","error":{"code":70,"message":"Album not found"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"subsonic-response":{"status":"ok","album":{
			"id":"al1","name":"Blue Train","artist":"John Coltrane","artistId":"ar1",
			"song":[
				{"id":"s1","title":"Moment's Notice","album":"Blue Train","artist":"John Coltrane"},
				{"id":"s2","title":"Lazy Bird (Take 2)","album":"Blue Train","artist":"John Coltrane"}
			]
		}}}`))
	})
	navidrome.HandleFunc("/rest/setRating", func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.ratings[r.URL.Query().Get("id")] = r.URL.Query().Get("rating")
		env.mu.Unlock()
		_, _ = w.Write([]byte(`{"subsonic-response":{"status":"ok"}}`))
	})
	navServer := httptest.NewServer(navidrome)
	t.Cleanup(navServer.Close)

	spotify := http.NewServeMux()
	spotify.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if tokenStatus != 0 {
			w.WriteHeader(tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client secret"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	spotify.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		env.mu.Lock()
		env.queries = append(env.queries, query)
		env.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(query, "Moment's Notice") {
			_, _ = w.Write([]byte(`{"tracks":{"items":[{"id":"t1","name":"Moment's Notice","popularity":55}],"total":1}}`))
			return
		}
		_, _ = w.Write([]byte(`{"tracks":{"items":[],"total":0}}`))
	})
	spotifyServer := httptest.NewServer(spotify)
	t.Cleanup(spotifyServer.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithNavidrome(navServer.URL),
		testsupport.WithSpotify(spotifyServer.URL+"/v1/", spotifyServer.URL+"/api/token"),
	)
	env.baseDir = testsupport.BaseDir(cfg)
	env.logDir = cfg.Paths.LogDir
	env.configPath = filepath.Join(env.baseDir, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q

[navidrome]
base_url = %q
user = %q
password = %q

[spotify]
client_id = %q
client_secret = %q
api_base_url = %q
token_url = %q

[web]
api_key = %q
`,
		cfg.Paths.DataDir,
		cfg.Navidrome.BaseURL, cfg.Navidrome.User, cfg.Navidrome.Password,
		cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.APIBaseURL, cfg.Spotify.TokenURL,
		cfg.Web.APIKey,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func onlyRunLog(t *testing.T, dir string) string {
	t.Helper()
	entries, err := runlogs.List(dir)
	if err != nil {
		t.Fatalf("list run logs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one run log, got %d", len(entries))
	}
	return filepath.Join(dir, entries[0].Name)
}

func TestSyncAlbumWritesRatingsAndReport(t *testing.T) {
	env := setupCLITestEnv(t, 0)

	out, _, err := runCLI(t, []string{"--album", "al1"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "Tracks: 2 | Found: 1 |")
	requireContains(t, out, "Not Found: 1 | Match: 50.0%")

	env.mu.Lock()
	rating := env.ratings["s1"]
	_, ratedMissing := env.ratings["s2"]
	env.mu.Unlock()
	if rating != "3" {
		t.Fatalf("expected popularity 55 to become rating 3, got %q", rating)
	}
	if ratedMissing {
		t.Fatal("unmatched track must not be rated")
	}

	logPath := onlyRunLog(t, env.logDir)
	last, err := runlogs.LastLine(logPath)
	if err != nil {
		t.Fatalf("LastLine: %v", err)
	}
	summary, ok := runlogs.ParseSummary(last)
	if !ok {
		t.Fatalf("last run log line is not the report: %q", last)
	}
	if summary.Tracks != 2 || summary.Found != 1 || summary.NotFound != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	processed, err := os.ReadFile(filepath.Join(env.baseDir, "processed_albums.txt"))
	if err != nil {
		t.Fatalf("read processed albums: %v", err)
	}
	if string(processed) != "al1\n" {
		t.Fatalf("unexpected processed albums %q", processed)
	}
}

func TestSyncSkipsProcessedAlbumUnlessForced(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	if err := os.WriteFile(filepath.Join(env.baseDir, "processed_albums.txt"), []byte("al1\n"), 0o644); err != nil {
		t.Fatalf("seed processed albums: %v", err)
	}

	out, _, err := runCLI(t, []string{"-b", "al1"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "Tracks: 0 | Found: 0 |")
	env.mu.Lock()
	searched := len(env.queries)
	env.mu.Unlock()
	if searched != 0 {
		t.Fatalf("expected no searches for a processed album, got %d", searched)
	}

	out, _, err = runCLI(t, []string{"-b", "al1", "--force", "--preview"}, env.configPath)
	if err != nil {
		t.Fatalf("forced sync: %v", err)
	}
	requireContains(t, out, "Tracks: 2 | Found: 1 |")
	env.mu.Lock()
	defer env.mu.Unlock()
	if len(env.ratings) != 0 {
		t.Fatalf("preview must not write ratings: %v", env.ratings)
	}
}

func TestSyncAbortsOnAuthenticationFailure(t *testing.T) {
	env := setupCLITestEnv(t, http.StatusBadRequest)

	out, _, err := runCLI(t, []string{"--album", "al1"}, env.configPath)
	if err == nil {
		t.Fatal("expected sync to fail")
	}
	var logged *loggedError
	if !errors.As(err, &logged) {
		t.Fatalf("expected abort to be logged, got %T %v", err, err)
	}
	if strings.Contains(out, "Tracks:") {
		t.Fatalf("aborted run must not print a report: %q", out)
	}

	content, readErr := os.ReadFile(onlyRunLog(t, env.logDir))
	if readErr != nil {
		t.Fatalf("read run log: %v", readErr)
	}
	requireContains(t, string(content), "sync aborted")
	requireContains(t, string(content), "error_kind=authentication")
	requireContains(t, string(content), "Invalid client secret")
}

func TestSyncRejectsMissingCredentials(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	path := filepath.Join(env.baseDir, "empty.toml")
	if err := os.WriteFile(path, []byte("[paths]\ndata_dir = \""+filepath.ToSlash(env.baseDir)+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, nil, path)
	if err == nil {
		t.Fatal("expected missing credentials to fail")
	}
	requireContains(t, err.Error(), "NAV_BASE_URL")
}

func TestSyncLogsConfigurationErrorToRunLog(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	broken := strings.Replace(string(data), `base_url = "http://`, `base_url = "ftp://`, 1)
	if err := os.WriteFile(env.configPath, []byte(broken), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err = runCLI(t, nil, env.configPath)
	if err == nil {
		t.Fatal("expected invalid base URL to fail")
	}
	var logged *loggedError
	if !errors.As(err, &logged) {
		t.Fatalf("expected configuration failure to be logged, got %T %v", err, err)
	}

	content, readErr := os.ReadFile(onlyRunLog(t, env.logDir))
	if readErr != nil {
		t.Fatalf("read run log: %v", readErr)
	}
	requireContains(t, string(content), "sync aborted")
	requireContains(t, string(content), "error_kind=configuration")
	requireContains(t, string(content), "URL must start with")
	env.mu.Lock()
	defer env.mu.Unlock()
	if len(env.queries) != 0 {
		t.Fatalf("no search may run with an invalid config: %v", env.queries)
	}
}

func TestNegativeRangeIsRejected(t *testing.T) {
	env := setupCLITestEnv(t, 0)
	if _, _, err := runCLI(t, []string{"--start", "-1"}, env.configPath); err == nil {
		t.Fatal("expected negative start to fail")
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCLI(t, []string{"-v"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "sptnr "+version {
		t.Fatalf("unexpected version output %q", out)
	}
}
