package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fetcher performs GET requests against the admin API. It is implemented by
// *Client and can be faked in tests.
type Fetcher interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the admin REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
	log       zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger logs each request at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.log = logger.With().Str("component", "backend").Logger() }
}

const (
	defaultAPIBind   = "127.0.0.1:8080"
	defaultUserAgent = "steward/0.1"
	requestTimeout   = 10 * time.Second

	// ListAllLimit is the page size used when draining a whole collection.
	ListAllLimit = 100
	maxPages     = 1000
)

// ErrNilClient is returned when a nil *Client is used.
var ErrNilClient = errors.New("client is nil")

// StatusError reports an HTTP error response.
type StatusError struct {
	Status  int
	Path    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// NewClient builds a Client for the apiBind host:port (or URL).
func NewClient(apiBind string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// Get issues GET path?query and decodes the JSON body into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	if c == nil {
		return ErrNilClient
	}
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	return c.doURL(ctx, http.MethodGet, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", rel.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	if resp.StatusCode >= 400 {
		return &StatusError{Status: resp.StatusCode, Path: rel.Path, Message: errorMessage(resp.Body)}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error
// body, if present.
func errorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64*1024)).Decode(&payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Message)
}

// List fetches one page of resource.
func List[T any](ctx context.Context, f Fetcher, resource Resource, query url.Values) (Page[T], error) {
	var page Page[T]
	if err := f.Get(ctx, resource.Path(), query, &page); err != nil {
		return Page[T]{}, fmt.Errorf("list %s: %w", resource, err)
	}
	return page, nil
}

// ListAll drains every page of resource using ListAllLimit rows per page.
// query may carry filters; its page and limit are overwritten.
func ListAll[T any](ctx context.Context, f Fetcher, resource Resource, query url.Values) ([]T, error) {
	values := url.Values{}
	for k, v := range query {
		values[k] = append([]string(nil), v...)
	}
	values.Set("limit", strconv.Itoa(ListAllLimit))

	var all []T
	for page := 1; page <= maxPages; page++ {
		values.Set("page", strconv.Itoa(page))
		batch, err := List[T](ctx, f, resource, values)
		if err != nil {
			return nil, err
		}
		all = append(all, batch.Items...)
		if len(batch.Items) == 0 || page >= batch.Pagination.TotalPages {
			return all, nil
		}
	}
	return all, fmt.Errorf("list %s: more than %d pages", resource, maxPages)
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
