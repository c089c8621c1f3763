package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"

	"github.com/bobinette/atelier/errors"
	"github.com/bobinette/atelier/log"
)

const RequestIDHeader = "X-Request-Id"

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Config is shared by every API client. HTTPClient is where authentication
// happens: resource clients are given an oauth2 client backed by the
// session, the auth client a plain one.
type Config struct {
	BaseURL    string
	HTTPClient HTTPClient
	Logger     log.Logger

	// Timeout bounds each call. Zero means no deadline besides the
	// caller's context.
	Timeout time.Duration
}

type Client struct {
	baseURL *url.URL
	client  HTTPClient
	logger  log.Logger
	timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url is required", errors.Programming())
	}

	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.New("invalid api base url", errors.Programming(), errors.WithCause(err))
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Client{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
		timeout: cfg.Timeout,
	}, nil
}

// Endpoint builds the endpoint of one API call. The encoder is responsible
// for the path and body, the decoder for the response.
func (c *Client) Endpoint(method string, enc kithttp.EncodeRequestFunc, dec kithttp.DecodeResponseFunc) endpoint.Endpoint {
	tgt := *c.baseURL
	client := kithttp.NewClient(
		method,
		&tgt,
		enc,
		dec,
		kithttp.SetClient(c.client),
		kithttp.ClientBefore(setRequestID),
		kithttp.ClientAfter(c.logResponse),
	)

	return endpoint.Chain(
		Deadline(c.timeout),
		classify,
	)(client.Endpoint())
}

// Deadline bounds the call with d.
func Deadline(d time.Duration) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			if d <= 0 {
				return next(ctx, request)
			}

			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, request)
		}
	}
}

// classify marks the errors that do not come from decoding the response:
// the request did not complete.
func classify(next endpoint.Endpoint) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		response, err := next(ctx, request)
		if err != nil && errors.KindOf(err) == errors.KindUnknown {
			err = errors.New("", errors.Transport(), errors.WithCause(err))
		}
		return response, err
	}
}

func setRequestID(ctx context.Context, r *http.Request) context.Context {
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return ctx
}

func (c *Client) logResponse(ctx context.Context, res *http.Response) context.Context {
	if res.Request == nil {
		return ctx
	}

	c.logger.
		WithField("request_id", res.Request.Header.Get(RequestIDHeader)).
		Debugf("%s %s -> %d", res.Request.Method, res.Request.URL.Path, res.StatusCode)
	return ctx
}
