package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default transfer timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultRetryDelay is the first wait between retried transfers
	DefaultRetryDelay = 500 * time.Millisecond
	// RequestIDHeader carries the generated request id
	RequestIDHeader = "X-Request-Id"
)

// Transfer describes one completed or failed call to Client.Do.
type Transfer struct {
	RequestID  string
	Method     string
	URL        string
	StatusCode int
	Reason     string
	BodySize   int
	Duration   time.Duration
	StartedAt  time.Time
	Err        error
}

// Recorder receives every transfer made by a Client.
type Recorder interface {
	Record(ctx context.Context, t *Transfer) error
}

type Client struct {
	executor       Executor
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	userAgent      string
	defaultHeaders map[string]string
	retries        int
	retryDelay     time.Duration
	limiter        *rate.Limiter
	requestIDs     bool
	recorder       Recorder
	logger         *zap.Logger
	stats          *Stats
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: false,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
		retryDelay:     DefaultRetryDelay,
		logger:         zap.NewNop(),
		stats:          newStats(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.executor == nil {
		c.executor = NewCurlExecutor("")
	}

	return c
}

// WithExecutor replaces the curl subprocess executor.
func WithExecutor(e Executor) ClientOption {
	return func(c *Client) {
		c.executor = e
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

func WithUserAgent(agent string) ClientOption {
	return func(c *Client) {
		c.userAgent = agent
	}
}

// WithRetries retries connection-level transfer failures up to n times with
// exponential backoff starting at delay.
func WithRetries(n int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = n
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithRateLimit caps transfers per second. Zero or less disables the limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRequestID adds a generated X-Request-Id header to every request that
// does not already carry one.
func WithRequestID(enabled bool) ClientOption {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}

func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = r
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Stats returns a snapshot of the transfers made so far.
func (c *Client) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	prepared, requestID := c.prepare(req)

	args, err := prepared.Args()
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	log := c.logger.With(
		zap.String("method", prepared.method()),
		zap.String("url", prepared.BuildURL()),
	)
	if requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}

	start := time.Now()
	raw, err := c.execute(ctx, args, log)
	var resp *Response
	if err == nil {
		resp, err = NewResponse(prepared.BuildURL(), raw)
	}
	duration := time.Since(start)

	c.stats.record(duration, err != nil)
	c.record(ctx, &Transfer{
		RequestID: requestID,
		Method:    prepared.method(),
		URL:       prepared.BuildURL(),
		Duration:  duration,
		StartedAt: start,
		Err:       err,
	}, resp)

	if err != nil {
		log.Warn("transfer failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	resp.duration = duration
	resp.requestID = requestID
	log.Debug("transfer complete",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", duration),
		zap.Int("body_bytes", len(resp.Content())),
	)
	return resp, nil
}

// prepare applies client defaults to a copy of req.
func (c *Client) prepare(req *Request) (*Request, string) {
	prepared := *req

	prepared.Headers = make(map[string]string, len(c.defaultHeaders)+len(req.Headers))
	for k, v := range c.defaultHeaders {
		prepared.Headers[k] = v
	}
	for k, v := range req.Headers {
		prepared.Headers[k] = v
	}

	if prepared.Timeout <= 0 {
		prepared.Timeout = c.timeout
	}
	if c.followRedirect {
		prepared.FollowRedirects = true
	}
	if prepared.MaxRedirects <= 0 {
		prepared.MaxRedirects = c.maxRedirects
	}
	if !c.validateSSL {
		prepared.Insecure = true
	}
	if prepared.Proxy == "" {
		prepared.Proxy = c.proxyURL
	}
	if prepared.UserAgent == "" {
		prepared.UserAgent = c.userAgent
	}

	requestID := prepared.Headers[RequestIDHeader]
	if requestID == "" && c.requestIDs {
		requestID = uuid.NewString()
		prepared.Headers[RequestIDHeader] = requestID
	}

	return &prepared, requestID
}

func (c *Client) execute(ctx context.Context, args []string, log *zap.Logger) (string, error) {
	var raw string
	operation := func() error {
		out, err := c.executor.Execute(ctx, args)
		if err != nil {
			var transferErr *TransferError
			if ctx.Err() != nil || !errors.As(err, &transferErr) || !transferErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		raw = out
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryDelay
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(c.retries, 0))), ctx)

	err := backoff.RetryNotify(operation, b, func(err error, wait time.Duration) {
		log.Warn("retrying transfer", zap.Error(err), zap.Duration("wait", wait))
	})
	return raw, err
}

func (c *Client) record(ctx context.Context, t *Transfer, resp *Response) {
	if c.recorder == nil {
		return
	}
	if resp != nil {
		t.StatusCode = resp.StatusCode()
		t.Reason = resp.Reason()
		t.BodySize = len(resp.Content())
	}
	if err := c.recorder.Record(ctx, t); err != nil {
		c.logger.Warn("failed to record transfer", zap.String("url", t.URL), zap.Error(err))
	}
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  "GET",
		URL:     url,
		Headers: headers,
	})
}

func (c *Client) Head(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  "HEAD",
		URL:     url,
		Headers: headers,
	})
}

func (c *Client) Post(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  "POST",
		URL:     url,
		Body:    body,
		Headers: headers,
	})
}

func (c *Client) Put(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  "PUT",
		URL:     url,
		Body:    body,
		Headers: headers,
	})
}

func (c *Client) Patch(ctx context.Context, url, body string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  "PATCH",
		URL:     url,
		Body:    body,
		Headers: headers,
	})
}

func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  "DELETE",
		URL:     url,
		Headers: headers,
	})
}
