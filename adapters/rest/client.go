package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

const (
	defaultTimeout    = 15 * time.Second
	headerRequestID   = "X-Request-ID"
	defaultAPIBaseURL = "http://localhost:8000/api/v1"
)

// Config configures the transport
type Config struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8000/api/v1
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client talks to the marketplace API over HTTP. Every call is a single
// round trip; nothing is retried.
type Client struct {
	http    *client.Client
	baseURL string
	logger  *zap.Logger
}

var _ core.API = (*Client)(nil)

func New(config Config) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := client.New()
	cc.SetTimeout(timeout)

	return &Client{
		http:    cc,
		baseURL: baseURL,
		logger:  logger,
	}
}

var errEmptyBody = errors.New("empty response body")

// errorBody is the API's error envelope. "error" is accepted as well.
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) request(ctx context.Context, token string) *client.Request {
	req := c.http.R().
		SetContext(ctx).
		SetHeader(headerRequestID, uuid.NewString()).
		SetHeader("Accept", "application/json")
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// do sends req and decodes a 2xx body into out (which may be nil).
// Non-2xx becomes *core.APIError; network and decode failures become
// *core.TransportError.
func (c *Client) do(req *client.Request, method, path string, out any) error {
	op := method + " " + path
	started := time.Now()

	var (
		resp *client.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = req.Get(c.url(path))
	case http.MethodPost:
		resp, err = req.Post(c.url(path))
	case http.MethodPut:
		resp, err = req.Put(c.url(path))
	default:
		return &core.TransportError{Op: op, Err: fmt.Errorf("unsupported method %s", method)}
	}
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &core.TransportError{Op: op, Err: err}
	}
	defer resp.Close()

	status := resp.StatusCode()
	c.logger.Debug("request done",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(started)))

	body := resp.Body()
	if status < 200 || status > 299 {
		return decodeAPIError(status, body)
	}

	if out == nil {
		return nil
	}
	if len(body) == 0 {
		return &core.TransportError{Op: op, Err: errEmptyBody}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &core.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &core.APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Detail = eb.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = eb.Error
		}
	}
	if apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(status)
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *core.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
