package auth

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/bobinette/atelier/clients"
	"github.com/bobinette/atelier/clients/internal"
	"github.com/bobinette/atelier/session"
)

// Client calls the authentication API. It implements session.AuthAPI.
type Client struct {
	login    endpoint.Endpoint
	register endpoint.Endpoint
}

func NewClient(cfg clients.Config) (*Client, error) {
	c, err := clients.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		login:    c.Endpoint(http.MethodPost, encodeCredentials("api", "auth", "login"), decodeLoginResponse),
		register: c.Endpoint(http.MethodPost, encodeCredentials("api", "auth", "register"), decodeRegisterResponse),
	}, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (session.LoginResponse, error) {
	res, err := c.login(ctx, credentials{Email: email, Password: password})
	if err != nil {
		return session.LoginResponse{}, err
	}
	return res.(session.LoginResponse), nil
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	_, err := c.register(ctx, credentials{Email: email, Password: password})
	return err
}

func encodeCredentials(route ...string) func(context.Context, *http.Request, interface{}) error {
	return func(_ context.Context, r *http.Request, request interface{}) error {
		internal.Route(r, route...)
		return internal.EncodeJSONBody(r, request)
	}
}

// decodeLoginResponse only decodes: checking that the tokens are there is
// the session manager's job.
func decodeLoginResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body session.LoginResponse
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func decodeRegisterResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body internal.MessageResponse
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	return body, nil
}
