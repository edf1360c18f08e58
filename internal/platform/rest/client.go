// Package rest is the envelope-aware HTTP core every entity gateway is
// built on. It owns the uniform concerns: bearer attachment on every call,
// expired-session pre-flight, envelope decoding and the error taxonomy.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/pkg/criteria"
)

// TokenSource supplies the bearer token for an outgoing call. An empty
// token with a nil error means "no session, send no header". A non-nil
// error (typically auth.ErrSessionExpired) aborts the call before any
// network I/O.
type TokenSource interface {
	Token() (string, error)
}

type Client struct {
	http   *resty.Client
	tokens TokenSource
	log    zerolog.Logger
}

type Option func(*Client)

// WithTokenSource wires the session token into every request the client
// issues. There is deliberately no per-gateway opt-out.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithHTTPClient substitutes the underlying http.Client, used by tests to
// point at an httptest server transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL).SetHeader("Accept", "application/json")
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().SetBaseURL(baseURL).SetHeader("Accept", "application/json"),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.http.BaseURL }

func (c *Client) newRequest(ctx context.Context) (*resty.Request, error) {
	req := c.http.R().SetContext(ctx)
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		if tok != "" {
			req.SetAuthToken(tok)
		}
	}
	return req, nil
}

// Search posts criteria to {base}/search. Empty-valued filters are stripped
// before the request leaves the client.
func Search[T any](ctx context.Context, c *Client, base string, crit criteria.Criteria) (*criteria.PageData[T], error) {
	crit = crit.Sanitized()
	if err := crit.Validate(); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(crit).Post(base + "/search")
	page, err := decode[criteria.PageData[T]](c, resp, err)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetOne fetches a single entity; a 404 maps to ErrNotFound.
func GetOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get(path)
	return decode[T](c, resp, err)
}

// PostOne creates an entity and returns the backend's copy, id included.
func PostOne[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(body).Post(path)
	return decode[T](c, resp, err)
}

// PutOne updates an entity and returns the backend's copy.
func PutOne[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(body).Put(path)
	return decode[T](c, resp, err)
}

// Delete removes an entity. The envelope carries no meaningful data.
func Delete(ctx context.Context, c *Client, path string) error {
	req, err := c.newRequest(ctx)
	if err != nil {
		return err
	}
	resp, err := req.Delete(path)
	_, err = decode[json.RawMessage](c, resp, err)
	return err
}

// decode applies the error taxonomy to a resty response:
//   - transport error or non-2xx status -> TransportError
//   - 404 -> ErrNotFound
//   - envelope with isSuccess=false -> BusinessError with the backend message
func decode[T any](c *Client, resp *resty.Response, err error) (*T, error) {
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	status := resp.StatusCode()
	c.log.Debug().
		Str("method", resp.Request.Method).
		Str("url", resp.Request.URL).
		Int("status", status).
		Dur("latency", resp.Time()).
		Msg("backend call")

	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	// Non-2xx is always a transport problem (auth, proxy, backend down);
	// business failures arrive as 200 with isSuccess=false.
	if status < 200 || status > 299 {
		return nil, &TransportError{Status: status}
	}

	var env criteria.Envelope[T]
	if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr != nil {
		return nil, &TransportError{Status: status, Err: jsonErr}
	}
	if !env.IsSuccess {
		return nil, &BusinessError{Message: env.Message}
	}
	return &env.Data, nil
}
