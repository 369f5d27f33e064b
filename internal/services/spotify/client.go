package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sptnr/internal/services"
)

const component = "spotify"

// Default endpoints of the public metadata API.
const (
	DefaultAPIBaseURL = "https://api.spotify.com/v1/"
	DefaultTokenURL   = "https://accounts.spotify.com/api/token"
)

// Searcher looks up the popularity of the best track match for a query.
type Searcher interface {
	SearchTrack(ctx context.Context, query string) (popularity int, found bool, err error)
}

// Client exchanges app credentials for a bearer token once and then runs
// single-result track searches.
type Client struct {
	clientID     string
	clientSecret string
	apiBaseURL   string
	tokenURL     string
	httpClient   *http.Client

	mu         sync.Mutex
	api        *spotifyapi.Client
	rateLimits *retryAfterTransport
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for both token and API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIBaseURL overrides the API root. It must end with a slash.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.apiBaseURL = baseURL
		}
	}
}

// WithTokenURL overrides the client-credentials token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		if tokenURL = strings.TrimSpace(tokenURL); tokenURL != "" {
			c.tokenURL = tokenURL
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a client. No network traffic happens until Authenticate or the
// first search.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("spotify client id required")
	}
	clientSecret = strings.TrimSpace(clientSecret)
	if clientSecret == "" {
		return nil, errors.New("spotify client secret required")
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiBaseURL:   DefaultAPIBaseURL,
		tokenURL:     DefaultTokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if !strings.HasSuffix(client.apiBaseURL, "/") {
		client.apiBaseURL += "/"
	}
	return client, nil
}

// Authenticate performs the client-credentials exchange. It is a no-op once a
// token has been obtained; the token is not refreshed during a run.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.apiClient(ctx)
	return err
}

// SearchTrack runs a track search limited to one result and reports the
// popularity (0-100) of that result.
func (c *Client) SearchTrack(ctx context.Context, query string) (int, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, false, errors.New("query must not be empty")
	}
	api, err := c.apiClient(ctx)
	if err != nil {
		return 0, false, err
	}
	result, err := api.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(1))
	if err != nil {
		return 0, false, c.classify("search", err)
	}
	if result == nil || result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return 0, false, nil
	}
	return int(result.Tracks.Tracks[0].Popularity), true, nil
}

func (c *Client) apiClient(ctx context.Context) (*spotifyapi.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	creds := clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenURL,
	}
	token, err := creds.Token(ctx)
	if err != nil {
		return nil, authError(err)
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	httpClient.Timeout = c.httpClient.Timeout
	c.rateLimits = &retryAfterTransport{base: httpClient.Transport}
	httpClient.Transport = c.rateLimits
	c.api = spotifyapi.New(httpClient,
		spotifyapi.WithBaseURL(c.apiBaseURL),
		spotifyapi.WithRetry(false),
	)
	return c.api, nil
}

func authError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		description := strings.TrimSpace(retrieveErr.ErrorDescription)
		if description == "" {
			description = "Unknown error"
		}
		return services.Wrap(services.ErrAuthentication, component, "token", description, nil)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return services.Wrap(services.ErrConnectivity, component, "token", "unable to reach the token endpoint", err)
	}
	return services.Wrap(services.ErrAuthentication, component, "token", "client credentials exchange failed", err)
}

func (c *Client) classify(operation string, err error) error {
	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusTooManyRequests:
			message := "rate limited (HTTP 429); retry later"
			if c.rateLimits != nil {
				if wait := c.rateLimits.take(); wait != "" {
					message = "rate limited (HTTP 429); retry after " + wait
				}
			}
			return services.Wrap(services.ErrUpstream, component, operation, message, nil)
		case http.StatusUnauthorized:
			return services.Wrap(services.ErrAuthentication, component, operation, apiErr.Message, nil)
		default:
			return services.Wrap(services.ErrUpstream, component, operation,
				fmt.Sprintf("HTTP %d: %s", apiErr.Status, apiErr.Message), nil)
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return services.Wrap(services.ErrConnectivity, component, operation, "unable to reach server", err)
	}
	return services.Wrap(services.ErrUpstream, component, operation, "unexpected response", err)
}

// retryAfterTransport keeps the Retry-After hint of the latest 429 response,
// which the API client's error type does not expose.
type retryAfterTransport struct {
	base http.RoundTripper

	mu   sync.Mutex
	last string
}

func (t *retryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		t.mu.Lock()
		t.last = formatRetryAfter(resp.Header.Get("Retry-After"))
		t.mu.Unlock()
	}
	return resp, err
}

func (t *retryAfterTransport) take() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	value := t.last
	t.last = ""
	return value
}

// formatRetryAfter renders a delay-seconds header as "30s"; HTTP dates pass
// through unchanged.
func formatRetryAfter(value string) string {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return (time.Duration(seconds) * time.Second).String()
	}
	return value
}
