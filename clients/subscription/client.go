package subscription

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/clients"
	"github.com/bobinette/atelier/clients/internal"
)

// Client calls the subscription API. Its HTTP client must authenticate the
// requests.
type Client struct {
	subscription endpoint.Endpoint
	update       endpoint.Endpoint
	plans        endpoint.Endpoint
	packages     endpoint.Endpoint
	topUp        endpoint.Endpoint
}

func NewClient(cfg clients.Config) (*Client, error) {
	c, err := clients.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		subscription: c.Endpoint(http.MethodGet, internal.NoBody("api", "subscription"), decodeSubscriptionResponse),
		update:       c.Endpoint(http.MethodPut, encodeJSON("api", "subscription"), decodeSubscriptionResponse),
		plans:        c.Endpoint(http.MethodGet, internal.NoBody("api", "subscription", "plans"), decodePlansResponse),
		packages:     c.Endpoint(http.MethodGet, internal.NoBody("api", "subscription", "topup", "packages"), decodePackagesResponse),
		topUp:        c.Endpoint(http.MethodPost, encodeJSON("api", "subscription", "topup"), decodeTopUpResponse),
	}, nil
}

type subscriptionResponse struct {
	Subscription atelier.Subscription `json:"subscription"`
	Message      string               `json:"message"`
}

type topUpResponse struct {
	Tokens  int64  `json:"tokens"`
	Message string `json:"message"`
}

func (c *Client) Subscription(ctx context.Context) (atelier.Subscription, error) {
	res, err := c.subscription(ctx, nil)
	if err != nil {
		return atelier.Subscription{}, err
	}
	return res.(subscriptionResponse).Subscription, nil
}

// UpdateSubscription moves the account to the plan. It returns the new
// subscription and the message of the server, if any.
func (c *Client) UpdateSubscription(ctx context.Context, planID string) (atelier.Subscription, string, error) {
	res, err := c.update(ctx, struct {
		PlanID string `json:"planId"`
	}{PlanID: planID})
	if err != nil {
		return atelier.Subscription{}, "", err
	}
	body := res.(subscriptionResponse)
	return body.Subscription, body.Message, nil
}

func (c *Client) Plans(ctx context.Context) ([]atelier.Plan, error) {
	res, err := c.plans(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.([]atelier.Plan), nil
}

func (c *Client) TopUpPackages(ctx context.Context) ([]atelier.TopUpPackage, error) {
	res, err := c.packages(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.([]atelier.TopUpPackage), nil
}

// PurchaseTopUp buys the package and returns the number of tokens added.
func (c *Client) PurchaseTopUp(ctx context.Context, packageID string) (int64, string, error) {
	res, err := c.topUp(ctx, struct {
		PackageID string `json:"packageId"`
	}{PackageID: packageID})
	if err != nil {
		return 0, "", err
	}
	body := res.(topUpResponse)
	return body.Tokens, body.Message, nil
}

func encodeJSON(route ...string) func(context.Context, *http.Request, interface{}) error {
	return func(_ context.Context, r *http.Request, request interface{}) error {
		internal.Route(r, route...)
		return internal.EncodeJSONBody(r, request)
	}
}

func decodeSubscriptionResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body subscriptionResponse
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func decodePlansResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body struct {
		Plans []atelier.Plan `json:"plans"`
	}
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	if body.Plans == nil {
		body.Plans = []atelier.Plan{}
	}
	return body.Plans, nil
}

func decodePackagesResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body struct {
		Packages []atelier.TopUpPackage `json:"packages"`
	}
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	if body.Packages == nil {
		body.Packages = []atelier.TopUpPackage{}
	}
	return body.Packages, nil
}

func decodeTopUpResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body topUpResponse
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	return body, nil
}
