package projects

import (
	"net/url"
	"strings"

	"github.com/bobinette/atelier/errors"
)

// Links are the addresses of a project in the web application.
type Links struct {
	// Editor opens the project for editing.
	Editor string
	// Share is the public link of the project.
	Share string
}

// LinksOf builds the links of project id from the origin of the web
// application.
func LinksOf(origin, id string) (Links, error) {
	if strings.TrimSpace(id) == "" {
		return Links{}, errors.New("no project selected", errors.Validation(), errors.BadRequest())
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Links{}, errors.New("invalid application url "+origin, errors.Validation(), errors.WithCause(err))
	}

	editor, err := url.JoinPath(origin, "editor", id)
	if err != nil {
		return Links{}, errors.New("could not build editor link", errors.WithCause(err))
	}
	share, err := url.JoinPath(origin, "p", id)
	if err != nil {
		return Links{}, errors.New("could not build share link", errors.WithCause(err))
	}
	return Links{Editor: editor, Share: share}, nil
}
