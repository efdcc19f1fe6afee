package wink

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Wink API origin.
	DefaultBaseURL = "https://winkapi.quirky.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "wink-go"
)

// Client is a Wink API client.
//
// A Client is safe for concurrent use. Calls are independent and share only
// the Session's token.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	session    *Session
	logger     Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API origin, mostly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
// This option can be applied in any order relative to other options.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithSession shares an existing session, so several clients can use one
// token. The session's credentials take precedence over NewClient's.
func WithSession(s *Session) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithCredentials replaces the credentials passed to NewClient. Any token
// already held by the current session is dropped.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.session = NewSession(creds)
	}
}

// NewClient creates a new Wink API client for the given application and
// account credentials. Username and passphrase may be left empty and passed
// to Login instead.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: defaultTransport(),
		},
		session: NewSession(creds),
		logger:  NewLogrusLogger(nil),
	}

	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("wink: invalid base URL %q: %w", c.baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("wink: invalid base URL %q: scheme must be http or https", c.baseURL)
	}

	return c, nil
}

// defaultTransport returns the transport used when no HTTP client is supplied.
func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// Session returns the session holding the client's OAuth token.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the API origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the client's collectors, or nil when metrics are disabled.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}
