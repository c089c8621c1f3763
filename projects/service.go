// Package projects holds the operations of the project list: listing,
// renaming, deleting and creating projects.
package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/errors"
	"github.com/bobinette/atelier/log"
)

type API interface {
	List(ctx context.Context, kind atelier.ProjectKind) ([]atelier.Project, error)
	Delete(ctx context.Context, ids []string) error
	Rename(ctx context.Context, id, title string) (string, error)
	Create(ctx context.Context, prompt string) (atelier.Project, error)
}

type Service struct {
	api    API
	logger log.Logger
}

func NewService(api API, logger log.Logger) (*Service, error) {
	if api == nil {
		return nil, errors.New("projects service requires an API", errors.Programming())
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{api: api, logger: logger}, nil
}

func (s *Service) List(ctx context.Context, kind atelier.ProjectKind) ([]atelier.Project, error) {
	if !kind.Valid() {
		return nil, errors.New(fmt.Sprintf("unknown project type %q", kind), errors.Validation(), errors.BadRequest())
	}

	projects, err := s.api.List(ctx, kind)
	if err != nil {
		s.logger.Errorf("could not list %s: %v", kind, err)
		return nil, failure(err, "Failed to fetch projects")
	}
	return projects, nil
}

// Rename sets the title of a project and returns the confirmation message.
func (s *Service) Rename(ctx context.Context, id, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("Project title cannot be empty", errors.Validation(), errors.BadRequest())
	}

	msg, err := s.api.Rename(ctx, id, title)
	if err != nil {
		s.logger.Errorf("could not rename project %s: %v", id, err)
		return "", failure(err, "Failed to rename project")
	}
	if msg == "" {
		msg = "Project renamed successfully"
	}
	return msg, nil
}

// Delete removes the selected projects and returns the number of projects
// sent for deletion. An empty selection does nothing.
func (s *Service) Delete(ctx context.Context, ids []string) (int, error) {
	seen := make(map[string]bool, len(ids))
	selection := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		selection = append(selection, id)
	}
	if len(selection) == 0 {
		return 0, nil
	}

	if err := s.api.Delete(ctx, selection); err != nil {
		s.logger.Errorf("could not delete projects %v: %v", selection, err)
		return 0, failure(err, "Failed to delete projects")
	}
	return len(selection), nil
}

// Create starts a new project from a prompt.
func (s *Service) Create(ctx context.Context, prompt string) (atelier.Project, error) {
	if strings.TrimSpace(prompt) == "" {
		return atelier.Project{}, errors.New("Please describe your project", errors.Validation(), errors.BadRequest())
	}

	p, err := s.api.Create(ctx, prompt)
	if err != nil {
		s.logger.Errorf("could not create project: %v", err)
		return atelier.Project{}, failure(err, "Failed to create project")
	}
	return p, nil
}

// DeletedMessage is the confirmation of the deletion of n projects.
func DeletedMessage(n int) string {
	return fmt.Sprintf("Successfully deleted %d project(s)", n)
}

func failure(err error, fallback string) error {
	if errors.MessageOr(err, "") != "" {
		return err
	}
	return errors.New(fallback, errors.WithCode(errors.CodeOf(err)), errors.WithKind(errors.KindOf(err)), errors.WithCause(err))
}
