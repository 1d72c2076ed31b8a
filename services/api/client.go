// Package apisvc is the HTTP client of the Gyaan Buddy REST API.
package apisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/trezcool/gyaanbuddy/core"
)

const requestIDHeader = "X-Request-ID"

var newRequestID = uuid.NewString // mockable

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	storage core.LocalStorage
	logger  core.Logger
	limiter *rate.Limiter
	metrics *metrics
	guard   logoutGuard

	hookMu    sync.RWMutex
	onExpired func()
}

var _ core.APIClient = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithHandler serves every request in-process with h instead of going to the network.
func WithHandler(h http.Handler) Option {
	return func(c *Client) { c.http = &http.Client{Transport: handlerTransport{handler: h}} }
}

// WithRegisterer registers the client metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newMetrics(reg) }
}

// WithSessionExpired sets the hook fired when a failure ends the session. See OnSessionExpired.
func WithSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

func New(conf core.APIConfig, storage core.LocalStorage, logger core.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(conf.BaseURL, "/"),
		timeout: conf.Timeout,
		http:    &http.Client{},
		storage: storage,
		logger:  logger,
	}
	if conf.RateLimit > 0 {
		burst := int(math.Ceil(conf.RateLimit))
		c.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newMetrics(prometheus.NewRegistry())
	}
	return c
}

// OnSessionExpired sets the hook fired, at most once per session, when a request fails in a way
// that invalidates the session.
func (c *Client) OnSessionExpired(fn func()) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.onExpired = fn
}

// SessionStarted re-arms the logout cascade. Call it once a new session is established.
func (c *Client) SessionStarted() {
	c.guard.rearm()
}

// LoggingOut reports whether the logout cascade fired for the current session.
func (c *Client) LoggingOut() bool {
	return c.guard.state() == guardLoggingOut
}

// Do sends req and returns the body of a 2xx response.
func (c *Client) Do(ctx context.Context, req core.APIRequest) ([]byte, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	start := time.Now()
	body, status, err := c.send(ctx, req)
	c.metrics.observe(req.Method, req.Path, status, time.Since(start))

	if err != nil {
		c.fail(req, err)
		return nil, err
	}
	c.logger.Debug("api request", map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
		"status": status,
	})
	return body, nil
}

func (c *Client) send(parent context.Context, req core.APIRequest) ([]byte, int, error) {
	ctx := parent
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(parent.Err(), context.Canceled) {
				return nil, 0, errors.Wrapf(context.Canceled, "%s %s", req.Method, req.Path)
			}
			return nil, 0, errors.Wrapf(core.ErrThrottled, "%s %s", req.Method, req.Path)
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, c.networkError(parent, ctx, req, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, c.networkError(parent, ctx, req, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, errors.Wrapf(parseAPIError(resp.StatusCode, data), "%s %s", req.Method, req.Path)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) newRequest(ctx context.Context, req core.APIRequest) (*http.Request, error) {
	method := req.Method
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s %s", method, req.Path)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s %s", method, req.Path)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set(requestIDHeader, newRequestID())

	if !core.IsPublicPath(req.Path) {
		token, err := c.storage.Get(ctx, core.TokenKey)
		if err != nil {
			c.logger.Warn("reading auth token", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

func encodeBody(req core.APIRequest) (io.Reader, string, error) {
	if req.Form != nil {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range req.Form.Fields {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
		for _, f := range req.Form.Files {
			part, err := mw.CreateFormFile(f.Field, f.Filename)
			if err != nil {
				return nil, "", err
			}
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, "", errors.Wrapf(err, "reading %s", f.Filename)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &buf, mw.FormDataContentType(), nil
	}

	if req.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// networkError classifies a transport failure.
func (c *Client) networkError(parent, ctx context.Context, req core.APIRequest, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return errors.Wrapf(context.Canceled, "%s %s", req.Method, req.Path)
	}
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrapf(core.ErrRequestTimeout, "%s %s", req.Method, req.Path)
	}
	c.logger.Debug("api transport failure", err)
	return errors.Wrapf(core.ErrCannotConnect, "%s %s", req.Method, req.Path)
}

// fail runs the logout cascade when err invalidates the session.
// Public endpoints and bad input responses are exempt, as are requests canceled or throttled before they could fail.
func (c *Client) fail(req core.APIRequest, err error) {
	if core.IsPublicPath(req.Path) || core.IsValidation(err) || core.IsCanceled(err) || core.IsThrottled(err) {
		c.logger.Debug("api request failed", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
			"error":  err.Error(),
		})
		return
	}

	c.logger.Warn("api request failed", map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
		"error":  err.Error(),
	})
	if !c.guard.trip() {
		return
	}

	c.logger.Info("session expired, logging out", map[string]interface{}{"path": req.Path})
	if err := c.storage.Remove(context.Background(), core.TokenKey); err != nil {
		c.logger.Error("removing auth token", err)
	}

	c.hookMu.RLock()
	hook := c.onExpired
	c.hookMu.RUnlock()
	if hook != nil {
		hook()
	}
}
