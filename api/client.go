// Package api talks to the storefront REST backend. All backend payload
// quirks are normalized here; callers only see models types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"github.com/aluiziolira/cosmetics-storefront/config"
)

const (
	requestIDHeader = "X-Request-ID"
	responseKey     = "response"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport.base = rt
	}
}

// WithTokenSource attaches the session that authenticates requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithMetrics shares a metrics bundle between clients.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.Metrics = m
	}
}

// Client issues REST calls against the storefront backend.
type Client struct {
	cfg       *config.Config
	base      *url.URL
	collector *colly.Collector
	transport *contextTransport
	tokens    TokenSource
	retry     *retryManager
	Metrics   *Metrics
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Host == "" {
		return nil, errors.New("base url must include a host")
	}

	c := &Client{
		cfg:  cfg,
		base: base,
		transport: &contextTransport{
			base: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   cfg.Timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		Metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(c.transport)
	collector.OnRequest(func(r *colly.Request) {
		if ctx := c.transport.lookup(r.Headers.Get(requestIDHeader)); ctx != nil && ctx.Err() != nil {
			r.Abort()
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(responseKey, r)
	})

	c.collector = collector
	c.retry = newRetryManager(cfg.MaxRetries, cfg.RetryDelay, c.Metrics)
	return c, nil
}

// TotalRetries reports how many retry attempts the client has issued.
func (c *Client) TotalRetries() int {
	return c.retry.TotalRetries()
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// auth rejects the call before any network traffic when no token is held.
	auth bool
	// idempotent reads are retried; mutations get a single attempt.
	idempotent bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, errors.Wrap(err, "encode request")
	}
	return request{method: method, path: path, body: body, contentType: "application/json"}, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do runs rq under the retry policy and decodes the JSON body into out.
func (c *Client) do(ctx context.Context, op string, rq request, out any) error {
	if rq.auth && c.token() == "" {
		err := AuthError{Op: op, Message: "Please log in to continue"}
		c.Metrics.IncError(errorTypeLabel(err))
		return err
	}

	if !rq.idempotent {
		return c.attempt(ctx, op, rq, out)
	}
	return c.retry.Do(ctx, op, func(int) error {
		return c.attempt(ctx, op, rq, out)
	})
}

func (c *Client) attempt(ctx context.Context, op string, rq request, out any) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		c.Metrics.ObserveDuration(op, time.Since(start))
		if err != nil {
			label := errorTypeLabel(err)
			c.Metrics.IncRequest(op, label)
			c.Metrics.IncError(label)
			slog.Debug("request failed",
				slog.String("op", op),
				slog.String("category", label),
				slog.Any("error", err),
			)
			return
		}
		c.Metrics.IncRequest(op, "ok")
	}()

	id := uuid.NewString()
	hdr := http.Header{}
	hdr.Set("User-Agent", c.cfg.UserAgent)
	hdr.Set("Accept", "application/json")
	hdr.Set(requestIDHeader, id)
	if rq.contentType != "" {
		hdr.Set("Content-Type", rq.contentType)
	}
	if tok := c.token(); tok != "" {
		hdr.Set("Authorization", "Bearer "+tok)
	}

	var body io.Reader
	if rq.body != nil {
		body = bytes.NewReader(rq.body)
	}

	c.transport.register(id, ctx)
	defer c.transport.release(id)

	cctx := colly.NewContext()
	reqErr := c.collector.Request(rq.method, c.endpoint(rq.path, rq.query), body, cctx, hdr)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if reqErr != nil {
		return classifyError(op, reqErr)
	}
	resp, ok := cctx.GetAny(responseKey).(*colly.Response)
	if !ok || resp == nil {
		return TransportError{Op: op, Message: "no response received"}
	}
	return decodeResponse(op, resp.StatusCode, resp.Headers, resp.Body, out)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// envelope is the success/status/message wrapper shared by every endpoint.
type envelope struct {
	Success *bool  `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e envelope) failed() bool {
	if e.Success != nil && !*e.Success {
		return true
	}
	return e.Status != "" && !strings.EqualFold(e.Status, "success")
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func decodeResponse(op string, status int, headers *http.Header, body []byte, out any) error {
	contentType := ""
	if headers != nil {
		contentType = headers.Get("Content-Type")
	}
	jsonBody := isJSON(contentType)

	if status >= http.StatusBadRequest {
		var env envelope
		if jsonBody {
			_ = json.Unmarshal(body, &env)
		}
		return statusError(op, status, env.Message)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		if out == nil {
			return nil
		}
		return DecodeError{Op: op, ContentType: contentType, Err: io.ErrUnexpectedEOF}
	}
	if !jsonBody {
		return DecodeError{Op: op, ContentType: contentType, Err: errNonJSON}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return DecodeError{Op: op, ContentType: contentType, Err: err}
	}
	if env.failed() {
		message := env.Message
		if message == "" {
			message = "request failed"
		}
		return TransportError{Op: op, StatusCode: status, Message: message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return DecodeError{Op: op, ContentType: contentType, Err: err}
	}
	return nil
}

// contextTransport ties each outgoing request to the caller's context. The
// collector builds requests without one, so the request id header is used to
// find it again.
type contextTransport struct {
	base     http.RoundTripper
	inflight sync.Map
}

func (t *contextTransport) register(id string, ctx context.Context) {
	t.inflight.Store(id, ctx)
}

func (t *contextTransport) release(id string) {
	t.inflight.Delete(id)
}

func (t *contextTransport) lookup(id string) context.Context {
	if id == "" {
		return nil
	}
	v, ok := t.inflight.Load(id)
	if !ok {
		return nil
	}
	ctx, _ := v.(context.Context)
	return ctx
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	parent := t.lookup(req.Header.Get(requestIDHeader))
	if parent == nil {
		return t.base.RoundTrip(req)
	}

	ctx, cancel := context.WithCancel(req.Context())
	stop := context.AfterFunc(parent, cancel)
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		stop()
		cancel()
		return nil, err
	}
	resp.Body = &releasingBody{ReadCloser: resp.Body, release: func() {
		stop()
		cancel()
	}}
	return resp, nil
}

type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
