package core

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/coregx/pgrest/internal/logger"
	"github.com/coregx/pgrest/internal/tracer"
)

// Client talks to one PostgREST-compatible gateway. It owns the HTTP
// transport, the default headers (including a precomputed Authorization
// value — the client never fetches or refreshes tokens), and the default
// schema. Clients are explicit context objects with no package-level
// state: independent clients never interfere. A Client is safe for
// concurrent use; builders derived from it are not.
type Client struct {
	baseURL    string
	host       string
	schema     string
	headers    http.Header
	httpClient *http.Client
	logger     logger.Logger
	tracer     tracer.Tracer
	sanitizer  *logger.Sanitizer
	ctx        context.Context
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled HTTP client. Timeouts, proxy
// settings, and TLS configuration belong to this client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets an overall per-request timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithSchema sets the default schema, sent as Accept-Profile on reads and
// Content-Profile on writes. Builders can override it per request.
func WithSchema(schema string) Option {
	return func(c *Client) {
		c.schema = schema
	}
}

// WithAuthToken sets a precomputed bearer token for the Authorization
// header. Token lifecycle (fetching, refreshing) stays with the caller.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.headers.Set("Authorization", "Bearer "+token)
	}
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithLogger enables structured logging through the given slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = logger.NewSlogAdapter(l)
		}
	}
}

// WithTracerProvider enables OpenTelemetry tracing. One span per terminal
// call, named pgrest.call.execute.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tracer.NewOtelTracer(tp.Tracer("pgrest"))
		}
	}
}

// WithSensitiveParams replaces the set of parameter and header names whose
// values are masked in logs.
func WithSensitiveParams(names ...string) Option {
	return func(c *Client) {
		c.sanitizer = logger.NewSanitizer(names)
	}
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, WrapError(err, "parse base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, configErrorf("NewClient", "base URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, configErrorf("NewClient", "base URL has no host")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		host:       u.Host,
		headers:    http.Header{},
		httpClient: &http.Client{Transport: defaultTransport()},
		sanitizer:  logger.NewSanitizer(nil),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// defaultTransport returns a pooled transport with HTTP/2 enabled.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// Close releases idle transport connections. The client remains usable.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// BaseURL returns the normalized gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithContext returns a derived client whose context is the default for
// every builder that does not set its own.
func (c *Client) WithContext(ctx context.Context) *Client {
	derived := *c
	derived.ctx = ctx
	return &derived
}

// Schema returns a derived client with a different default schema.
func (c *Client) Schema(name string) *Client {
	derived := *c
	derived.schema = name
	return &derived
}

// From starts a read query against a table or view.
func (c *Client) From(table string) *SelectQuery {
	return newSelectQuery(c, table)
}

// Insert starts an insert of payload — a struct, map, or slice of either.
func (c *Client) Insert(table string, payload interface{}) *InsertQuery {
	return newInsertQuery(c, table, payload)
}

// Update starts a partial update; provide the payload with Set.
func (c *Client) Update(table string) *UpdateQuery {
	return newUpdateQuery(c, table)
}

// Upsert starts an insert that resolves duplicate-key conflicts in place.
func (c *Client) Upsert(table string, payload interface{}) *UpsertQuery {
	return newUpsertQuery(c, table, payload)
}

// Delete starts a delete.
func (c *Client) Delete(table string) *DeleteQuery {
	return newDeleteQuery(c, table)
}

// Rpc starts a stored-function call with named arguments.
func (c *Client) Rpc(fn string, args map[string]interface{}) *RpcQuery {
	return newRpcQuery(c, fn, args)
}

// Model starts a reflection-driven CRUD operation on a struct model.
func (c *Client) Model(model interface{}) *ModelQuery {
	return newModelQuery(c, model)
}
