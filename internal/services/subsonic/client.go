package subsonic

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sptnr/internal/services"
)

const (
	apiVersion = "1.12.0"
	clientName = "sptnr"
	component  = "subsonic"
)

// Catalog is the subset of the Subsonic API the sync job depends on.
type Catalog interface {
	GetArtists(ctx context.Context) ([]Artist, error)
	GetArtist(ctx context.Context, id string) (*Artist, error)
	GetAlbum(ctx context.Context, id string) (*Album, error)
	SetRating(ctx context.Context, id string, rating int) error
}

// Client talks to a Subsonic-compatible media server such as Navidrome.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
}

var _ Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the client's HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a Subsonic client. baseURL is the server root without /rest.
func New(baseURL, user, password string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("subsonic base url required")
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, errors.New("subsonic user required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		user:       user,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Ping verifies connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "ping", nil)
	return err
}

// GetArtists returns every artist, flattened across index buckets in server order.
func (c *Client) GetArtists(ctx context.Context) ([]Artist, error) {
	resp, err := c.call(ctx, "getArtists", nil)
	if err != nil {
		return nil, err
	}
	if resp.Artists == nil {
		return nil, services.Wrap(services.ErrUpstream, component, "getArtists", "response missing artists", nil)
	}
	var artists []Artist
	for _, entry := range resp.Artists.Index {
		artists = append(artists, entry.Artists...)
	}
	return artists, nil
}

// GetArtist returns the artist with its album list.
func (c *Client) GetArtist(ctx context.Context, id string) (*Artist, error) {
	resp, err := c.call(ctx, "getArtist", url.Values{"id": {id}})
	if err != nil {
		return nil, err
	}
	if resp.Artist == nil {
		return nil, services.Wrap(services.ErrUpstream, component, "getArtist", "response missing artist "+id, nil)
	}
	return resp.Artist, nil
}

// GetAlbum returns album metadata including its songs.
func (c *Client) GetAlbum(ctx context.Context, id string) (*Album, error) {
	resp, err := c.call(ctx, "getAlbum", url.Values{"id": {id}})
	if err != nil {
		return nil, err
	}
	if resp.Album == nil {
		return nil, services.Wrap(services.ErrUpstream, component, "getAlbum", "response missing album "+id, nil)
	}
	return resp.Album, nil
}

// SetRating stores a 0-5 star rating on a song. Zero clears the rating.
func (c *Client) SetRating(ctx context.Context, id string, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating %d out of range 0-5", rating)
	}
	_, err := c.call(ctx, "setRating", url.Values{"id": {id}, "rating": {strconv.Itoa(rating)}})
	return err
}

func (c *Client) call(ctx context.Context, endpoint string, params url.Values) (*payload, error) {
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("u", c.user)
	query.Set("p", "enc:"+hex.EncodeToString([]byte(c.password)))
	query.Set("v", apiVersion)
	query.Set("c", clientName)
	query.Set("f", "json")

	endpointURL := fmt.Sprintf("%s/rest/%s?%s", c.baseURL, endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrConnectivity, component, endpoint,
			"failed to reach the media server; check navidrome.base_url", redactErr(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrConnectivity, component, endpoint, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrUpstream, component, endpoint,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, services.Wrap(services.ErrUpstream, component, endpoint,
			"failed to parse JSON response; check that navidrome.base_url points at a Subsonic server", err)
	}
	if env.Response == nil {
		return nil, services.Wrap(services.ErrUpstream, component, endpoint, "unexpected response format", nil)
	}
	if env.Response.Error != nil {
		message := strings.TrimSpace(env.Response.Error.Message)
		if message == "" {
			message = "Unknown error"
		}
		return nil, services.Wrap(services.ErrUpstream, component, endpoint,
			fmt.Sprintf("server error %d: %s", env.Response.Error.Code, message), nil)
	}
	return env.Response, nil
}

// redactErr strips the query string from transport errors so the hex encoded
// password never reaches the logs.
func redactErr(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if parsed, perr := url.Parse(urlErr.URL); perr == nil {
			parsed.RawQuery = ""
			return &url.Error{Op: urlErr.Op, URL: parsed.String(), Err: urlErr.Err}
		}
	}
	return err
}
