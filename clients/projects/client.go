package projects

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-kit/kit/endpoint"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/clients"
	"github.com/bobinette/atelier/clients/internal"
)

// Client calls the project API: projects, their access lists and the user
// search used to find collaborators. Its HTTP client must authenticate the
// requests.
type Client struct {
	list         endpoint.Endpoint
	create       endpoint.Endpoint
	rename       endpoint.Endpoint
	delete       endpoint.Endpoint
	access       endpoint.Endpoint
	updateAccess endpoint.Endpoint
	searchUsers  endpoint.Endpoint
}

func NewClient(cfg clients.Config) (*Client, error) {
	c, err := clients.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		list:         c.Endpoint(http.MethodGet, encodeListRequest, decodeListResponse),
		create:       c.Endpoint(http.MethodPost, encodeCreateRequest, decodeCreateResponse),
		rename:       c.Endpoint(http.MethodPut, encodeRenameRequest, decodeMessageResponse),
		delete:       c.Endpoint(http.MethodDelete, encodeDeleteRequest, decodeMessageResponse),
		access:       c.Endpoint(http.MethodGet, encodeAccessRequest, decodeAccessResponse),
		updateAccess: c.Endpoint(http.MethodPut, encodeUpdateAccessRequest, decodeMessageResponse),
		searchUsers:  c.Endpoint(http.MethodGet, encodeSearchRequest, decodeSearchResponse),
	}, nil
}

// ------------------------------------------------------------------------------------
// Projects

func (c *Client) List(ctx context.Context, kind atelier.ProjectKind) ([]atelier.Project, error) {
	res, err := c.list(ctx, kind)
	if err != nil {
		return nil, err
	}
	return res.([]atelier.Project), nil
}

func (c *Client) Create(ctx context.Context, prompt string) (atelier.Project, error) {
	res, err := c.create(ctx, createRequest{Prompt: prompt})
	if err != nil {
		return atelier.Project{}, err
	}
	return res.(atelier.Project), nil
}

func (c *Client) Rename(ctx context.Context, id, title string) (string, error) {
	res, err := c.rename(ctx, renameRequest{id: id, Title: title})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (c *Client) Delete(ctx context.Context, ids []string) error {
	_, err := c.delete(ctx, deleteRequest{ProjectIDs: ids})
	return err
}

type createRequest struct {
	Prompt string `json:"prompt"`
}

type renameRequest struct {
	id    string
	Title string `json:"title"`
}

type deleteRequest struct {
	ProjectIDs []string `json:"projectIds"`
}

func encodeListRequest(_ context.Context, r *http.Request, request interface{}) error {
	internal.Route(r, "api", "projects")
	r.URL.RawQuery = url.Values{"type": {string(request.(atelier.ProjectKind))}}.Encode()
	return nil
}

func decodeListResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body struct {
		Projects []atelier.Project `json:"projects"`
	}
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	if body.Projects == nil {
		body.Projects = []atelier.Project{}
	}
	return body.Projects, nil
}

func encodeCreateRequest(_ context.Context, r *http.Request, request interface{}) error {
	internal.Route(r, "api", "projects")
	return internal.EncodeJSONBody(r, request)
}

func decodeCreateResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body struct {
		Project atelier.Project `json:"project"`
	}
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	return body.Project, nil
}

func encodeRenameRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(renameRequest)
	internal.Route(r, "api", "projects", req.id)
	return internal.EncodeJSONBody(r, req)
}

func encodeDeleteRequest(_ context.Context, r *http.Request, request interface{}) error {
	internal.Route(r, "api", "projects")
	return internal.EncodeJSONBody(r, request)
}

func decodeMessageResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body internal.MessageResponse
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	return body.Message, nil
}

// ------------------------------------------------------------------------------------
// Access

func (c *Client) Access(ctx context.Context, projectID string) ([]atelier.Collaborator, error) {
	res, err := c.access(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return res.([]atelier.Collaborator), nil
}

// UpdateAccess replaces the whole access list of the project.
func (c *Client) UpdateAccess(ctx context.Context, projectID string, grants []atelier.Grant) error {
	_, err := c.updateAccess(ctx, updateAccessRequest{projectID: projectID, Users: grants})
	return err
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]atelier.User, error) {
	res, err := c.searchUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	return res.([]atelier.User), nil
}

type updateAccessRequest struct {
	projectID string
	Users     []atelier.Grant `json:"users"`
}

func encodeAccessRequest(_ context.Context, r *http.Request, request interface{}) error {
	internal.Route(r, "api", "projects", request.(string), "access")
	return nil
}

func decodeAccessResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body struct {
		Users []atelier.Collaborator `json:"users"`
	}
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	if body.Users == nil {
		body.Users = []atelier.Collaborator{}
	}
	return body.Users, nil
}

func encodeUpdateAccessRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(updateAccessRequest)
	if req.Users == nil {
		req.Users = []atelier.Grant{}
	}
	internal.Route(r, "api", "projects", req.projectID, "access")
	return internal.EncodeJSONBody(r, req)
}

func encodeSearchRequest(_ context.Context, r *http.Request, request interface{}) error {
	internal.Route(r, "api", "team", "search")
	r.URL.RawQuery = url.Values{"q": {request.(string)}}.Encode()
	return nil
}

func decodeSearchResponse(_ context.Context, res *http.Response) (interface{}, error) {
	var body struct {
		Users []atelier.User `json:"users"`
	}
	if err := internal.DecodeResponse(res, &body); err != nil {
		return nil, err
	}
	if body.Users == nil {
		body.Users = []atelier.User{}
	}
	return body.Users, nil
}
