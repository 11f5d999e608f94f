package core

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/coregx/pgrest/internal/tracer"
)

// Call executes one compiled request against the gateway: a single round
// trip, no retries, no internal timeout. Cancellation comes from the
// context; deadlines come from the client's transport.
type Call struct {
	client *Client
	desc   *RequestDescriptor
	ctx    context.Context
	err    error // configuration error from compilation, reported before I/O
}

func newCall(c *Client, desc *RequestDescriptor, ctx context.Context, err error) *Call {
	return &Call{client: c, desc: desc, ctx: ctx, err: err}
}

// Exec performs the round trip and returns the normalized envelope.
// Execution errors — everything classified after I/O starts, transport
// failures included — are carried in the envelope's Error field; the
// returned error reports builder misuse detected before any I/O.
func (c *Call) Exec() (*ResponseEnvelope, error) {
	if c.err != nil {
		return nil, c.err
	}

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var span tracer.Span
	if c.client.tracer != nil {
		ctx, span = c.client.tracer.StartSpan(ctx, "pgrest.call.execute")
		defer span.End()
	}

	start := time.Now()

	req, err := c.buildHTTPRequest(ctx)
	if err != nil {
		if c.client.logger != nil {
			c.client.logger.Error("request construction failed",
				"method", c.desc.Method,
				"path", c.desc.Path,
				"error", err,
			)
		}
		return nil, WrapError(err, "build request")
	}

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		env := c.transportFailure(err)
		c.logResult(env, elapsed, err)
		c.recordSpan(span, env, elapsed, err)
		return env, nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		elapsed := time.Since(start)
		env := c.transportFailure(err)
		c.logResult(env, elapsed, err)
		c.recordSpan(span, env, elapsed, err)
		return env, nil
	}
	elapsed := time.Since(start)

	env := normalizeResponse(c.desc, resp.StatusCode, resp.Header, body)
	var execErr error
	if env.Error != nil {
		execErr = env.Error
	}
	c.logResult(env, elapsed, execErr)
	c.recordSpan(span, env, elapsed, execErr)
	return env, nil
}

// One executes the call and decodes a single entity into dest. A zero-row
// result — whether surfaced as a cardinality error or absorbed into null
// data — returns ErrNoRows; every other execution error is returned as its
// descriptor.
func (c *Call) One(dest interface{}) error {
	env, err := c.Exec()
	if err != nil {
		return err
	}
	return decodeOne(env, dest)
}

// All executes the call and decodes the row array into dest, which must be
// a pointer to a slice. A response without a body (return=minimal) leaves
// dest untouched and returns nil.
func (c *Call) All(dest interface{}) error {
	env, err := c.Exec()
	if err != nil {
		return err
	}
	if env.Error != nil {
		return env.Error
	}
	if !env.HasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return WrapError(err, "decode response")
	}
	return nil
}

func decodeOne(env *ResponseEnvelope, dest interface{}) error {
	if env.Error != nil {
		if isZeroRowError(env.Error) {
			return ErrNoRows
		}
		return env.Error
	}
	if !env.HasData() {
		return ErrNoRows
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return WrapError(err, "decode response")
	}
	return nil
}

func (c *Call) buildHTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if c.desc.Body != nil {
		body = bytes.NewReader(c.desc.Body)
	}
	req, err := http.NewRequestWithContext(ctx, c.desc.Method, c.desc.URL(c.client.baseURL), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.desc.Header {
		req.Header[k] = append([]string(nil), vs...)
	}
	return req, nil
}

func (c *Call) transportFailure(err error) *ResponseEnvelope {
	return &ResponseEnvelope{
		CountMode: c.desc.CountMode,
		Error: &ErrorDescriptor{
			Kind:    KindTransport,
			Message: err.Error(),
			cause:   err,
		},
	}
}

// logResult logs the round trip outcome if a logger is configured. The
// query string is masked so tokens in sensitive-named parameters never
// reach the log.
func (c *Call) logResult(env *ResponseEnvelope, elapsed time.Duration, err error) {
	if c.client.logger == nil {
		return
	}

	fields := []interface{}{
		"method", c.desc.Method,
		"path", c.desc.Path,
		"query", c.client.sanitizer.MaskQuery(c.desc.QueryString()),
		"status", env.Status,
		"duration_ms", elapsed.Milliseconds(),
		"operation", c.desc.Operation,
	}

	if err != nil {
		fields = append(fields, "error", err)
		c.client.logger.Error("request failed", fields...)
		return
	}

	// A non-2xx status without an error is the absorbed maybeSingle zero-row.
	if env.Status >= 300 {
		c.client.logger.Warn("request matched no rows", fields...)
		return
	}

	if env.Count != nil {
		fields = append(fields, "count", *env.Count)
	}
	c.client.logger.Info("request executed", fields...)
}

func (c *Call) recordSpan(span tracer.Span, env *ResponseEnvelope, elapsed time.Duration, err error) {
	if span == nil {
		return
	}
	tracer.AddRequestAttributes(span, &tracer.RequestMetadata{
		Method:     c.desc.Method,
		Host:       c.client.host,
		Path:       c.desc.Path,
		Query:      c.client.sanitizer.MaskQuery(c.desc.QueryString()),
		Operation:  c.desc.Operation,
		Table:      c.desc.Table,
		StatusCode: env.Status,
		Duration:   elapsed,
		Error:      err,
	})
}
