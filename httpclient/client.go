package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/asrgate/resilience"
)

// Client sends requests over a shared keep-alive pool, applying default
// headers, auth and the configured breaker and retry policy. It is safe for
// concurrent use.
type Client struct {
	http *http.Client
	cfg  Config
	cb   *resilience.CircuitBreaker
}

// New validates cfg and builds a client with its own transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost

	c := &Client{
		http: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		cfg:  cfg,
	}
	if cfg.CircuitBreaker != nil {
		c.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	return c, nil
}

// CircuitState reports the breaker state, or StateClosed when none is configured.
func (c *Client) CircuitState() resilience.State {
	if c.cb == nil {
		return resilience.StateClosed
	}
	return c.cb.State()
}

// Do sends req and reads the whole response. A non-2xx answer returns the
// Response together with a classified *Error. The body is encoded once; a
// retry policy only applies when it can be replayed, so an io.Reader body
// is sent exactly once.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := newPayload(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}
	if c.cfg.Retry == nil || body.stream != nil {
		return c.attempt(ctx, req, body)
	}

	var last *Response
	_, err = resilience.Retry(ctx, *c.cfg.Retry, func() (*Response, error) {
		resp, err := c.attempt(ctx, req, body)
		last = resp
		return resp, err
	})
	return last, err
}

// attempt sends once, through the breaker when one is configured.
func (c *Client) attempt(ctx context.Context, req Request, body payload) (*Response, error) {
	if c.cb == nil {
		return c.send(ctx, req, body)
	}
	var resp *Response
	err := c.cb.Execute(func() error {
		var err error
		resp, err = c.send(ctx, req, body)
		return err
	})
	if err == resilience.ErrCircuitOpen {
		return nil, NewCircuitOpenError(err)
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request, body payload) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body.reader())
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}
	c.decorate(httpReq, req, body.contentType)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(ctx.Err())
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes))
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Headers: firstValues(resp.Header), Body: data}
	if cerr := ClassifyStatusCode(resp.StatusCode, data); cerr != nil {
		return out, cerr
	}
	return out, nil
}

// resolve joins path onto BaseURL unless path is already absolute.
func (c *Client) resolve(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// decorate sets query, headers and auth. Request headers win over client
// defaults and a Host entry becomes the request host.
func (c *Client) decorate(httpReq *http.Request, req Request, contentType string) {
	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for _, headers := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range headers {
			if strings.EqualFold(k, "Host") {
				httpReq.Host = v
				continue
			}
			httpReq.Header.Set(k, v)
		}
	}
	if contentType != "" && httpReq.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := c.cfg.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)
}

// payload is an encoded request body: replayable bytes or a one-shot stream.
type payload struct {
	data        []byte
	stream      io.Reader
	contentType string
	empty       bool
}

func newPayload(body any) (payload, error) {
	switch v := body.(type) {
	case nil:
		return payload{empty: true}, nil
	case *MultipartBody:
		r, ct, err := v.encode()
		if err != nil {
			return payload{}, err
		}
		data, err := io.ReadAll(r)
		return payload{data: data, contentType: ct}, err
	case []byte:
		return payload{data: v}, nil
	case string:
		return payload{data: []byte(v), contentType: "text/plain"}, nil
	case io.Reader:
		return payload{stream: v}, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return payload{}, err
	}
	return payload{data: data, contentType: "application/json"}, nil
}

// reader returns a fresh body reader for one attempt.
func (p payload) reader() io.Reader {
	switch {
	case p.empty:
		return nil
	case p.stream != nil:
		return p.stream
	}
	return bytes.NewReader(p.data)
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

