package apitest

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/errors"
)

type HandlerFunc func(*gin.Context) (interface{}, error)

// JSONFormatter writes the result of next as JSON, and errors as a
// {"message"} body with the code of the error.
func JSONFormatter(next HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := next(c)
		if err != nil {
			c.JSON(errors.CodeOf(err), gin.H{
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) authenticate(c *gin.Context) {
	token := c.Request.Header.Get("Authorization")
	if len(token) <= 6 || strings.ToLower(token[:7]) != "bearer " {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "no token found"})
		return
	}

	userID, err := s.encoder.Decode(token[7:])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}

	c.Set("user", userID)
	c.Next()
}

func bind(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return errors.New("invalid body", errors.BadRequest(), errors.WithCause(err))
	}
	return nil
}

// ------------------------------------------------------------------------------------
// Auth

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) (interface{}, error) {
	var body credentials
	if err := bind(c, &body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[body.Email]
	if !ok || acc.password != body.Password {
		return nil, errors.New("Email or password is incorrect", errors.BadRequest())
	}

	access, refresh := s.issue(acc.user.ID)
	return map[string]interface{}{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         acc.user,
	}, nil
}

func (s *Server) register(c *gin.Context) (interface{}, error) {
	var body credentials
	if err := bind(c, &body); err != nil {
		return nil, err
	}
	if body.Email == "" || body.Password == "" {
		return nil, errors.New("Email and password are required", errors.BadRequest())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[body.Email]; ok {
		return nil, errors.New("User with this email already exists", errors.BadRequest())
	}

	s.accounts[body.Email] = account{
		user:     atelier.User{ID: uuid.NewString(), Name: body.Email, Email: body.Email},
		password: body.Password,
	}
	return gin.H{"message": "User registered successfully"}, nil
}

// ------------------------------------------------------------------------------------
// Projects

func (s *Server) listProjects(c *gin.Context) (interface{}, error) {
	kind := atelier.ProjectKind(c.Query("type"))

	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]atelier.Project, 0)
	for _, id := range s.order {
		if p := s.projects[id]; p.kind == kind {
			projects = append(projects, p.Project)
		}
	}
	return gin.H{"projects": projects}, nil
}

func (s *Server) createProject(c *gin.Context) (interface{}, error) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := bind(c, &body); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.Prompt) == "" {
		return nil, errors.New("Prompt is required", errors.BadRequest())
	}

	title := body.Prompt
	if len(title) > 50 {
		title = title[:50]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &project{
		Project: atelier.Project{ID: uuid.NewString(), Title: title, Visibility: "private"},
		kind:    atelier.Drafts,
	}
	s.projects[p.ID] = p
	s.order = append(s.order, p.ID)
	return gin.H{"project": p.Project}, nil
}

func (s *Server) renameProject(c *gin.Context) (interface{}, error) {
	var body struct {
		Title string `json:"title"`
	}
	if err := bind(c, &body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[c.Param("id")]
	if !ok {
		return nil, errors.New("Project not found", errors.NotFound())
	}
	p.Title = body.Title
	return gin.H{"message": "Project renamed successfully"}, nil
}

func (s *Server) deleteProjects(c *gin.Context) (interface{}, error) {
	var body struct {
		ProjectIDs []string `json:"projectIds"`
	}
	if err := bind(c, &body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := make(map[string]bool)
	for _, id := range body.ProjectIDs {
		if _, ok := s.projects[id]; ok {
			delete(s.projects, id)
			deleted[id] = true
		}
	}

	order := s.order[:0]
	for _, id := range s.order {
		if !deleted[id] {
			order = append(order, id)
		}
	}
	s.order = order

	return gin.H{"message": "Projects deleted successfully"}, nil
}

func (s *Server) getAccess(c *gin.Context) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[c.Param("id")]
	if !ok {
		return nil, errors.New("Project not found", errors.NotFound())
	}

	users := append(make([]atelier.Collaborator, 0, len(p.access)), p.access...)
	return gin.H{"users": users}, nil
}

func (s *Server) updateAccess(c *gin.Context) (interface{}, error) {
	var body struct {
		Users []atelier.Grant `json:"users"`
	}
	if err := bind(c, &body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[c.Param("id")]
	if !ok {
		return nil, errors.New("Project not found", errors.NotFound())
	}

	access := make([]atelier.Collaborator, 0, len(body.Users))
	for _, grant := range body.Users {
		if !grant.Access.Valid() {
			return nil, errors.New("Invalid access level", errors.BadRequest())
		}
		user, ok := s.user(grant.ID)
		if !ok {
			return nil, errors.New("User not found", errors.BadRequest())
		}
		access = append(access, atelier.Collaborator{User: user, Access: grant.Access})
	}
	p.access = access

	return gin.H{"message": "Project access updated successfully"}, nil
}

func (s *Server) searchUsers(c *gin.Context) (interface{}, error) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]atelier.User, 0)
	for _, acc := range s.accounts {
		name, email := strings.ToLower(acc.user.Name), strings.ToLower(acc.user.Email)
		if q != "" && (strings.Contains(name, q) || strings.Contains(email, q)) {
			users = append(users, acc.user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return gin.H{"users": users}, nil
}

// user must be called with the lock held.
func (s *Server) user(id string) (atelier.User, bool) {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return atelier.User{}, false
}

// ------------------------------------------------------------------------------------
// Subscription

func (s *Server) getSubscription(c *gin.Context) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return gin.H{"subscription": s.subscription}, nil
}

func (s *Server) updateSubscription(c *gin.Context) (interface{}, error) {
	var body struct {
		PlanID string `json:"planId"`
	}
	if err := bind(c, &body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, plan := range s.plans {
		if plan.ID != body.PlanID {
			continue
		}

		s.subscription.Plan = plan.Name
		if plan.Price != nil {
			s.subscription.Amount = *plan.Price
		}
		if plan.Currency != "" {
			s.subscription.Currency = plan.Currency
		}
		if plan.Tokens != nil {
			s.subscription.Tokens = *plan.Tokens
		}
		return gin.H{"subscription": s.subscription, "message": "Subscription updated successfully"}, nil
	}
	return nil, errors.New("Invalid plan", errors.BadRequest())
}

func (s *Server) listPlans(c *gin.Context) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return gin.H{"plans": append(make([]atelier.Plan, 0, len(s.plans)), s.plans...)}, nil
}

func (s *Server) listPackages(c *gin.Context) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return gin.H{"packages": append(make([]atelier.TopUpPackage, 0, len(s.packages)), s.packages...)}, nil
}

func (s *Server) purchaseTopUp(c *gin.Context) (interface{}, error) {
	var body struct {
		PackageID string `json:"packageId"`
	}
	if err := bind(c, &body); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pkg := range s.packages {
		if pkg.ID == body.PackageID {
			s.subscription.Tokens += pkg.Tokens
			return gin.H{"tokens": pkg.Tokens, "message": "Token top-up purchased successfully"}, nil
		}
	}
	return nil, errors.New("Invalid package", errors.BadRequest())
}
