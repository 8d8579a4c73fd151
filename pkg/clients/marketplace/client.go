package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultRetryWait     = time.Second
	defaultMaxConcurrent = 10
	slowRequestThreshold = 3 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts for transport errors and 5xx responses.
	Retries int
	// RetryWait is the first backoff interval; it doubles on every attempt.
	RetryWait time.Duration
	// MaxConcurrent caps in-flight requests across goroutines.
	MaxConcurrent int
	Logger        *zap.Logger
}

// Client is the shared resty wrapper every API module goes through.
type Client struct {
	http   *resty.Client
	sem    *semaphore.Weighted
	logger *zap.Logger

	mu           sync.RWMutex
	token        string
	refreshToken string
}

// Response is a raw HTTP exchange. HTTP error statuses are not Go errors here.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Duration   time.Duration
}

// New builds a marketplace API client.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout)

	if opts.Retries > 0 {
		wait := opts.RetryWait
		restyClient.
			SetRetryCount(opts.Retries).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(wait << opts.Retries).
			SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
				attempt := 0
				if resp != nil && resp.Request != nil {
					attempt = resp.Request.Attempt - 1
				}
				if attempt < 0 {
					attempt = 0
				}
				return wait << attempt, nil
			}).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &Client{
		http:   restyClient,
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger: opts.Logger,
	}
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = access
	c.refreshToken = refresh
}

// Do issues one request and returns the raw response whatever its status.
// Only transport failures and context cancellation produce an error.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	return c.do(ctx, method, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body any) (*Response, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	req := c.http.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if elapsed > slowRequestThreshold {
		c.logger.Warn("slow api response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", elapsed))
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Header:     resp.Header(),
		Duration:   elapsed,
	}, nil
}

// call performs a typed request: statuses >= 400 become *APIError, a 401 triggers
// one token refresh when a refresh token is held, and the payload is decoded into out.
func (c *Client) call(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.hasRefreshToken() {
		if rerr := c.Refresh(ctx); rerr != nil {
			c.logger.Warn("token refresh failed", zap.Error(rerr))
		} else {
			resp, err = c.do(ctx, method, path, query, body)
			if err != nil {
				return err
			}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(method, path, resp)
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := decodeData(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) hasRefreshToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken != ""
}

// decodeData unwraps the {"data": ...} envelope the API uses, falling back to the raw body.
func decodeData(body []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return json.Unmarshal(envelope.Data, out)
	}
	return json.Unmarshal(body, out)
}

// APIError is returned by typed API calls for statuses >= 400.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// UserMessage renders the error the way the storefront shows it to a user.
func (e *APIError) UserMessage() string {
	switch {
	case e.StatusCode >= http.StatusInternalServerError:
		return "Server error. Please try again later."
	case e.StatusCode == http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again."
	case e.Message != "":
		return e.Message
	default:
		return "An error occurred"
	}
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newAPIError(method, path string, resp *Response) *APIError {
	apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}

	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		switch msg := payload.Message.(type) {
		case string:
			apiErr.Message = msg
		case []any:
			parts := make([]string, 0, len(msg))
			for _, m := range msg {
				parts = append(parts, fmt.Sprint(m))
			}
			apiErr.Message = strings.Join(parts, "; ")
		}
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}
