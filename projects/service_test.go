package projects

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/errors"
)

type fakeAPI struct {
	projects map[atelier.ProjectKind][]atelier.Project
	err      error
	message  string

	listCalls   []atelier.ProjectKind
	deleteCalls [][]string
	renameCalls []string
	prompts     []string
}

func (f *fakeAPI) List(ctx context.Context, kind atelier.ProjectKind) ([]atelier.Project, error) {
	f.listCalls = append(f.listCalls, kind)
	return f.projects[kind], f.err
}

func (f *fakeAPI) Delete(ctx context.Context, ids []string) error {
	f.deleteCalls = append(f.deleteCalls, ids)
	return f.err
}

func (f *fakeAPI) Rename(ctx context.Context, id, title string) (string, error) {
	f.renameCalls = append(f.renameCalls, id+":"+title)
	return f.message, f.err
}

func (f *fakeAPI) Create(ctx context.Context, prompt string) (atelier.Project, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return atelier.Project{}, f.err
	}
	return atelier.Project{ID: "p1", Title: prompt}, nil
}

func newService(t *testing.T, api *fakeAPI) *Service {
	s, err := NewService(api, nil)
	require.NoError(t, err)
	return s
}

func TestNewService(t *testing.T) {
	_, err := NewService(nil, nil)
	if assert.Error(t, err) {
		errors.AssertKind(t, err, errors.KindProgramming)
	}
}

func TestService_List(t *testing.T) {
	api := &fakeAPI{projects: map[atelier.ProjectKind][]atelier.Project{
		atelier.Drafts: {{ID: "p1", Title: "Landing page"}},
	}}
	s := newService(t, api)

	projects, err := s.List(context.Background(), atelier.Drafts)
	require.NoError(t, err)
	assert.Equal(t, []atelier.Project{{ID: "p1", Title: "Landing page"}}, projects)

	_, err = s.List(context.Background(), atelier.ProjectKind("archived"))
	if assert.Error(t, err) {
		errors.AssertKind(t, err, errors.KindValidation)
	}
	assert.Equal(t, []atelier.ProjectKind{atelier.Drafts}, api.listCalls, "invalid kind should not reach the api")
}

func TestService_Failures(t *testing.T) {
	silent := stderrors.New("")
	api := &fakeAPI{err: errors.New("", errors.Transport(), errors.WithCause(silent))}
	s := newService(t, api)

	tts := map[string]struct {
		call    func() error
		message string
	}{
		"list": {
			call: func() error {
				_, err := s.List(context.Background(), atelier.Deployed)
				return err
			},
			message: "Failed to fetch projects",
		},
		"rename": {
			call: func() error {
				_, err := s.Rename(context.Background(), "p1", "New title")
				return err
			},
			message: "Failed to rename project",
		},
		"delete": {
			call: func() error {
				_, err := s.Delete(context.Background(), []string{"p1"})
				return err
			},
			message: "Failed to delete projects",
		},
		"create": {
			call: func() error {
				_, err := s.Create(context.Background(), "A shop")
				return err
			},
			message: "Failed to create project",
		},
	}

	for name, tt := range tts {
		err := tt.call()
		if assert.Error(t, err, "%s - should fail", name) {
			assert.Equal(t, tt.message, err.Error(), "%s - message", name)
			errors.AssertKind(t, err, errors.KindTransport)
			assert.True(t, stderrors.Is(err, silent), "%s - cause should be kept", name)
		}
	}

	// Messages of the api are kept
	api.err = errors.New("Project not found", errors.API(), errors.NotFound())
	_, err := s.Rename(context.Background(), "p1", "New title")
	if assert.Error(t, err) {
		assert.Equal(t, "Project not found", err.Error())
		errors.AssertCode(t, err, 404)
	}
}

func TestService_Rename(t *testing.T) {
	api := &fakeAPI{}
	s := newService(t, api)

	for _, title := range []string{"", "   "} {
		_, err := s.Rename(context.Background(), "p1", title)
		if assert.Error(t, err) {
			errors.AssertKind(t, err, errors.KindValidation)
		}
	}
	assert.Empty(t, api.renameCalls, "blank titles should not reach the api")

	msg, err := s.Rename(context.Background(), "p1", "  Portfolio ")
	require.NoError(t, err)
	assert.Equal(t, "Project renamed successfully", msg)
	assert.Equal(t, []string{"p1:Portfolio"}, api.renameCalls)

	api.message = "Renamed"
	msg, err = s.Rename(context.Background(), "p1", "Portfolio")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", msg)
}

func TestService_Delete(t *testing.T) {
	api := &fakeAPI{}
	s := newService(t, api)

	n, err := s.Delete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, api.deleteCalls, "empty selection should not reach the api")

	n, err = s.Delete(context.Background(), []string{"p1", "p2", "p1", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]string{{"p1", "p2"}}, api.deleteCalls)
	assert.Equal(t, "Successfully deleted 2 project(s)", DeletedMessage(n))
}

func TestService_Create(t *testing.T) {
	api := &fakeAPI{}
	s := newService(t, api)

	_, err := s.Create(context.Background(), " ")
	if assert.Error(t, err) {
		errors.AssertKind(t, err, errors.KindValidation)
	}
	assert.Empty(t, api.prompts)

	p, err := s.Create(context.Background(), "A shop for plants")
	require.NoError(t, err)
	assert.Equal(t, atelier.Project{ID: "p1", Title: "A shop for plants"}, p)
}
