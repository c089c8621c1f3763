// Package apitest provides a scripted fake of the atelier API. It keeps its
// state in memory, records every request it receives and can be told to
// answer a route with a canned response.
package apitest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bobinette/atelier"
)

// SigningKey signs the access tokens handed out by the fake.
var SigningKey = []byte("apitest")

// TokenLifetime is the validity of the access tokens handed out by the fake.
var TokenLifetime = time.Hour

type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type response struct {
	code int
	body string
}

type account struct {
	user     atelier.User
	password string
}

type project struct {
	atelier.Project
	kind   atelier.ProjectKind
	access []atelier.Collaborator
}

type Server struct {
	*httptest.Server

	mu        sync.Locker
	requests  []Request
	overrides map[string]response

	encoder  tokenEncoder
	accounts map[string]account
	projects map[string]*project
	order    []string

	subscription atelier.Subscription
	plans        []atelier.Plan
	packages     []atelier.TopUpPackage
}

// New starts a fake API. Close it when done.
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		mu:        &sync.Mutex{},
		overrides: make(map[string]response),
		encoder:   tokenEncoder{key: SigningKey, lifetime: TokenLifetime},
		accounts:  make(map[string]account),
		projects:  make(map[string]*project),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.record, s.override)

	// Unknown route
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	router.POST("/api/auth/login", JSONFormatter(s.login))
	router.POST("/api/auth/register", JSONFormatter(s.register))

	api := router.Group("/api", s.authenticate)
	api.GET("/projects", JSONFormatter(s.listProjects))
	api.POST("/projects", JSONFormatter(s.createProject))
	api.DELETE("/projects", JSONFormatter(s.deleteProjects))
	api.PUT("/projects/:id", JSONFormatter(s.renameProject))
	api.GET("/projects/:id/access", JSONFormatter(s.getAccess))
	api.PUT("/projects/:id/access", JSONFormatter(s.updateAccess))
	api.GET("/team/search", JSONFormatter(s.searchUsers))

	api.GET("/subscription", JSONFormatter(s.getSubscription))
	api.PUT("/subscription", JSONFormatter(s.updateSubscription))
	api.GET("/subscription/plans", JSONFormatter(s.listPlans))
	api.GET("/subscription/topup/packages", JSONFormatter(s.listPackages))
	api.POST("/subscription/topup", JSONFormatter(s.purchaseTopUp))

	return router
}

// ------------------------------------------------------------------------------------
// Scripting

// AddUser registers an account.
func (s *Server) AddUser(user atelier.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[user.Email] = account{user: user, password: password}
}

// Token issues a token pair for the user, as a successful login would.
func (s *Server) Token(userID string) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.issue(userID)
}

func (s *Server) AddProject(p atelier.Project, kind atelier.ProjectKind, access ...atelier.Collaborator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.projects[p.ID] = &project{
		Project: p,
		kind:    kind,
		access:  append([]atelier.Collaborator(nil), access...),
	}
}

// Project returns the stored project, false if it does not exist.
func (s *Server) Project(id string) (atelier.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return atelier.Project{}, false
	}
	return p.Project, true
}

// Access returns the stored access list of a project.
func (s *Server) Access(projectID string) []atelier.Collaborator {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil
	}
	return append([]atelier.Collaborator(nil), p.access...)
}

func (s *Server) SetSubscription(sub atelier.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscription = sub
}

func (s *Server) Subscription() atelier.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.subscription
}

func (s *Server) SetPlans(plans ...atelier.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = plans
}

func (s *Server) SetPackages(packages ...atelier.TopUpPackage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.packages = packages
}

// Respond makes the server answer method and path with code and the raw
// body instead of handling the request.
func (s *Server) Respond(method, path string, code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[routeKey(method, path)] = response{code: code, body: body}
}

// Fail makes the server answer method and path with an error message.
func (s *Server) Fail(method, path string, code int, message string) {
	s.Respond(method, path, code, fmt.Sprintf(`{"message":%q}`, message))
}

// Requests returns every request received so far, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests received on method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var reqs []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			reqs = append(reqs, r)
		}
	}
	return reqs
}

// ------------------------------------------------------------------------------------
// Middlewares

func routeKey(method, path string) string {
	return method + " " + path
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	c.Next()
}

func (s *Server) override(c *gin.Context) {
	s.mu.Lock()
	res, ok := s.overrides[routeKey(c.Request.Method, c.Request.URL.Path)]
	s.mu.Unlock()

	if !ok {
		c.Next()
		return
	}

	c.Data(res.code, "application/json; charset=utf-8", []byte(res.body))
	c.Abort()
}

// issue must be called with the lock held.
func (s *Server) issue(userID string) (string, string) {
	access, err := s.encoder.Encode(userID)
	if err != nil {
		panic(err)
	}
	return access, uuid.NewString()
}
