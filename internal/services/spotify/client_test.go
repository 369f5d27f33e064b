package spotify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"sptnr/internal/services"
	"sptnr/internal/services/spotify"
)

type fakeAPI struct {
	tokenStatus int
	tokenBody   string
	search      http.HandlerFunc
	tokenCalls  atomic.Int32
	queries     []string
}

func (f *fakeAPI) start(t *testing.T) *spotify.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Fatalf("unexpected grant type %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		status := f.tokenStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		body := f.tokenBody
		if body == "" {
			body = `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if r.URL.Query().Get("type") != "track" || r.URL.Query().Get("limit") != "1" {
			t.Fatalf("unexpected search params %s", r.URL.RawQuery)
		}
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		f.search(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := spotify.New("id", "secret",
		spotify.WithAPIBaseURL(server.URL+"/v1"),
		spotify.WithTokenURL(server.URL+"/api/token"),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestSearchTrackReturnsPopularityOfFirstResult(t *testing.T) {
	api := &fakeAPI{search: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":{"items":[{"id":"t1","name":"Song","popularity":72}],"total":1}}`))
	}}
	client := api.start(t)

	popularity, found, err := client.SearchTrack(context.Background(), "Song artist:Band album:Record")
	if err != nil {
		t.Fatalf("SearchTrack returned error: %v", err)
	}
	if !found || popularity != 72 {
		t.Fatalf("expected popularity 72, got %d found=%v", popularity, found)
	}
	if len(api.queries) != 1 || api.queries[0] != "Song artist:Band album:Record" {
		t.Fatalf("unexpected queries %q", api.queries)
	}
}

func TestSearchTrackNoResults(t *testing.T) {
	api := &fakeAPI{search: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":{"items":[],"total":0}}`))
	}}
	client := api.start(t)

	_, found, err := client.SearchTrack(context.Background(), "Nothing artist:Nobody")
	if err != nil {
		t.Fatalf("SearchTrack returned error: %v", err)
	}
	if found {
		t.Fatal("expected no match")
	}
}

func TestTokenIsExchangedOnce(t *testing.T) {
	api := &fakeAPI{search: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":{"items":[],"total":0}}`))
	}}
	client := api.start(t)

	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := client.SearchTrack(context.Background(), "q"); err != nil {
			t.Fatalf("SearchTrack returned error: %v", err)
		}
	}
	if calls := api.tokenCalls.Load(); calls != 1 {
		t.Fatalf("expected one token exchange, got %d", calls)
	}
}

func TestAuthenticationFailureCarriesDescription(t *testing.T) {
	api := &fakeAPI{
		tokenStatus: http.StatusBadRequest,
		tokenBody:   `{"error":"invalid_client","error_description":"Invalid client secret"}`,
	}
	client := api.start(t)

	err := client.Authenticate(context.Background())
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid client secret") {
		t.Fatalf("expected upstream description in %v", err)
	}
}

func TestRateLimitIsFatalUpstreamError(t *testing.T) {
	api := &fakeAPI{search: func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"status":429,"message":"API rate limit exceeded"}}`))
	}}
	client := api.start(t)

	_, _, err := client.SearchTrack(context.Background(), "Song artist:Band")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected rate limit message, got %v", err)
	}
	if !strings.Contains(err.Error(), "retry after 30s") {
		t.Fatalf("expected Retry-After hint, got %v", err)
	}
	if len(api.queries) != 1 {
		t.Fatalf("expected no retries, got %d requests", len(api.queries))
	}
}

func TestRateLimitWithoutRetryAfter(t *testing.T) {
	api := &fakeAPI{search: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"status":429,"message":"API rate limit exceeded"}}`))
	}}
	client := api.start(t)

	_, _, err := client.SearchTrack(context.Background(), "Song artist:Band")
	if err == nil || !strings.Contains(err.Error(), "rate limited (HTTP 429); retry later") {
		t.Fatalf("expected generic rate limit message, got %v", err)
	}
}

func TestServerErrorIsUpstreamError(t *testing.T) {
	api := &fakeAPI{search: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"status":500,"message":"boom"}}`))
	}}
	client := api.start(t)

	_, _, err := client.SearchTrack(context.Background(), "Song artist:Band")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestUnreachableTokenEndpointIsConnectivityError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	tokenURL := server.URL + "/api/token"
	server.Close()

	client, err := spotify.New("id", "secret", spotify.WithTokenURL(tokenURL))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Authenticate(context.Background()); !errors.Is(err, services.ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := spotify.New("", "secret"); err == nil {
		t.Fatal("expected missing client id to fail")
	}
	if _, err := spotify.New("id", ""); err == nil {
		t.Fatal("expected missing client secret to fail")
	}
}
