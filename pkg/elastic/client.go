// Package elastic is a minimal client for the Elasticsearch/OpenSearch index
// APIs used by the pruner: listing indices by prefix and deleting an index.
package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the per-request timeout used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// Config configures a Client.
type Config struct {
	// URL is the base URL of the cluster, e.g. http://localhost:9200.
	URL string

	// Username and Password enable basic auth when both are set.
	Username string
	Password string

	// Timeout is the per-request timeout. 0 means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the cluster REST API.
type Client struct {
	base     *url.URL
	username string
	password string
	http     *http.Client
}

// StatusError is returned when the cluster answers with a non-2xx status.
type StatusError struct {
	Index      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s: %s", e.Index, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type catIndex struct {
	Index string `json:"index"`
}

// New validates cfg and creates a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", cfg.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", cfg.URL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", cfg.URL)
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return nil, fmt.Errorf("both username and password must be provided for basic auth")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:     base,
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
	}, nil
}

// ListIndices returns the names of all indices starting with prefix.
func (c *Client) ListIndices(ctx context.Context, prefix string) ([]string, error) {
	u := c.endpoint("_cat", "indices", url.PathEscape(prefix)+"*")
	q := u.Query()
	q.Set("format", "json")
	q.Set("h", "index")
	u.RawQuery = q.Encode()

	resp, err := c.do(ctx, http.MethodGet, u)
	if err != nil {
		return nil, fmt.Errorf("cat indices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cat indices request failed: %w", newStatusError(prefix+"*", resp))
	}

	var items []catIndex
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode cat indices response: %w", err)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Index)
	}
	return names, nil
}

// DeleteIndex deletes a single index by name and returns the HTTP status code.
// A non-2xx status is returned together with a *StatusError.
func (c *Client) DeleteIndex(ctx context.Context, name string) (int, error) {
	if name == "" || strings.ContainsAny(name, "*,") {
		return 0, fmt.Errorf("refusing to delete %q: not a single index name", name)
	}

	u := c.endpoint(url.PathEscape(name))
	resp, err := c.do(ctx, http.MethodDelete, u)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newStatusError(name, resp)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// endpoint joins already escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) *url.URL {
	u := *c.base
	escaped := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + strings.Join(segments, "/")
	path, err := url.PathUnescape(escaped)
	if err != nil {
		path = escaped
	}
	u.Path = path
	u.RawPath = escaped
	u.RawQuery = ""
	u.Fragment = ""
	return &u
}

func (c *Client) do(ctx context.Context, method string, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return c.http.Do(req)
}

func newStatusError(index string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Index:      index,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
