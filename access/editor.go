// Package access edits the collaborator list of a project.
//
// An Editor is scoped to one open dialog: it is opened on a resource,
// mutated locally, then committed as a whole. API failures never escape
// the editor, they are reported through its notifier and leave the local
// state as it was.
package access

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/errors"
	"github.com/bobinette/atelier/log"
)

const DefaultTimeout = 30 * time.Second

// ErrClosed is returned by the mutations of an editor that is not open.
var ErrClosed = errors.New("access editor is closed", errors.Programming())

// ErrCommitting is returned by the mutations made while a commit is in
// flight.
var ErrCommitting = errors.New("access list is being saved", errors.Validation(), errors.WithCode(409))

type ResourceAPI interface {
	Access(ctx context.Context, resourceID string) ([]atelier.Collaborator, error)
	UpdateAccess(ctx context.Context, resourceID string, grants []atelier.Grant) error
	SearchUsers(ctx context.Context, query string) ([]atelier.User, error)
}

type Option func(*Editor)

// WithTimeout bounds every call made to the resource API. Zero or less
// means no deadline besides the one of the context given to Open.
func WithTimeout(d time.Duration) Option {
	return func(e *Editor) { e.timeout = d }
}

func WithLogger(l log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

type Editor struct {
	api      ResourceAPI
	notifier atelier.Notifier
	timeout  time.Duration
	logger   log.Logger

	mu            sync.Mutex
	open          bool
	resourceID    string
	collaborators []atelier.Collaborator
	query         string
	candidates    []atelier.User
	committing    bool

	// gen changes on every Open and Close, seq on every change of the
	// query. Responses are only applied when both still match.
	gen    uint64
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func NewEditor(api ResourceAPI, notifier atelier.Notifier, opts ...Option) (*Editor, error) {
	if api == nil {
		return nil, errors.New("access editor requires a resource API", errors.Programming())
	}
	if notifier == nil {
		return nil, errors.New("access editor requires a notifier", errors.Programming())
	}

	e := &Editor{
		api:      api,
		notifier: notifier,
		timeout:  DefaultTimeout,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Open starts editing the access list of resourceID, discarding any
// previous session of the editor. The calls made while the editor is open
// are cancelled when ctx is done or the editor is closed.
//
// Open reports whether the list could be fetched. When it could not, the
// failure is notified and the editor stays open with an empty list.
func (e *Editor) Open(ctx context.Context, resourceID string) bool {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.open = true
	e.resourceID = resourceID
	e.collaborators = []atelier.Collaborator{}
	e.query = ""
	e.candidates = []atelier.User{}
	e.committing = false
	e.gen++
	e.seq++
	gen, lifetime := e.gen, e.ctx
	e.mu.Unlock()

	callCtx, cancel := e.deadline(lifetime)
	defer cancel()
	collaborators, err := e.api.Access(callCtx, resourceID)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return false
	}
	if err != nil {
		e.mu.Unlock()
		e.logger.WithField("resource", resourceID).Errorf("could not fetch access list: %v", err)
		e.fail(err, "Failed to fetch project access")
		return false
	}
	e.collaborators = dedupe(collaborators)
	e.mu.Unlock()
	return true
}

// Search looks for users matching query that are not collaborators yet. A
// blank query gives no candidates without calling the API.
//
// Only the latest search is applied: when a more recent search, or a
// change of the editor, happened while this one was in flight, its
// response is discarded and Search returns nil. A failed search is
// notified and clears the candidates.
func (e *Editor) Search(query string) []atelier.User {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return nil
	}
	e.query = query
	e.seq++
	if strings.TrimSpace(query) == "" {
		e.candidates = []atelier.User{}
		e.mu.Unlock()
		return []atelier.User{}
	}
	gen, seq, lifetime := e.gen, e.seq, e.ctx
	e.mu.Unlock()

	callCtx, cancel := e.deadline(lifetime)
	defer cancel()
	users, err := e.api.SearchUsers(callCtx, query)

	e.mu.Lock()
	if gen != e.gen || seq != e.seq {
		e.mu.Unlock()
		e.logger.Debugf("discarding stale search %q", query)
		return nil
	}
	if err != nil {
		e.candidates = []atelier.User{}
		e.mu.Unlock()
		e.logger.Errorf("could not search users: %v", err)
		e.fail(err, "Failed to search users")
		return []atelier.User{}
	}

	candidates := make([]atelier.User, 0, len(users))
	for _, u := range users {
		if e.index(u.ID) < 0 {
			candidates = append(candidates, u)
		}
	}
	e.candidates = candidates
	e.mu.Unlock()

	return append([]atelier.User(nil), candidates...)
}

// Add makes user a collaborator with view access. Adding a collaborator
// twice is a no-op. The query and candidates are cleared either way.
func (e *Editor) Add(user atelier.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrClosed
	}
	if e.committing {
		return ErrCommitting
	}

	e.query = ""
	e.candidates = []atelier.User{}
	e.seq++

	if e.index(user.ID) >= 0 {
		return nil
	}
	e.collaborators = append(e.collaborators, atelier.Collaborator{User: user, Access: atelier.View})
	return nil
}

// Remove revokes the access of userID. Unknown users are ignored.
func (e *Editor) Remove(userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrClosed
	}
	if e.committing {
		return ErrCommitting
	}

	i := e.index(userID)
	if i < 0 {
		return nil
	}
	e.collaborators = append(e.collaborators[:i], e.collaborators[i+1:]...)
	return nil
}

// SetPermission changes the access level of userID. Unknown users are
// ignored.
func (e *Editor) SetPermission(userID string, level atelier.AccessLevel) error {
	if !level.Valid() {
		return errors.New("invalid access level "+string(level), errors.Validation(), errors.BadRequest())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return ErrClosed
	}
	if e.committing {
		return ErrCommitting
	}

	if i := e.index(userID); i >= 0 {
		e.collaborators[i].Access = level
	}
	return nil
}

// Commit replaces the access list of the resource with the local one. On
// success the editor is closed. On failure it stays open with the local
// edits, and the failure is notified.
//
// The list sent is the one at the time of the call: until the response
// comes back, Add, Remove and SetPermission return ErrCommitting and a
// second Commit returns false.
func (e *Editor) Commit() bool {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		e.logger.Errorf("commit on a closed access editor")
		return false
	}
	if e.committing {
		e.mu.Unlock()
		e.logger.Errorf("commit while another one is in flight")
		return false
	}
	e.committing = true

	grants := make([]atelier.Grant, len(e.collaborators))
	for i, c := range e.collaborators {
		grants[i] = atelier.Grant{ID: c.ID, Access: c.Access}
	}
	gen, resourceID, lifetime := e.gen, e.resourceID, e.ctx
	e.mu.Unlock()

	callCtx, cancel := e.deadline(lifetime)
	defer cancel()
	err := e.api.UpdateAccess(callCtx, resourceID, grants)
	if err != nil {
		e.logger.WithField("resource", resourceID).Errorf("could not update access list: %v", err)

		e.mu.Lock()
		current := gen == e.gen
		if current {
			e.committing = false
		}
		e.mu.Unlock()
		if current {
			e.fail(err, "Failed to update project access")
		}
		return false
	}

	e.mu.Lock()
	if gen == e.gen {
		e.close()
	}
	e.mu.Unlock()

	e.notifier.Notify(atelier.Notification{
		Severity:    atelier.Success,
		Title:       "Success",
		Description: "Project access updated successfully",
	})
	return true
}

// Close discards the local edits and aborts the calls in flight.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.close()
}

func (e *Editor) close() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.open = false
	e.committing = false
	e.resourceID = ""
	e.collaborators = nil
	e.query = ""
	e.candidates = nil
	e.gen++
}

func (e *Editor) ResourceID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resourceID
}

func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

func (e *Editor) Collaborators() []atelier.Collaborator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]atelier.Collaborator(nil), e.collaborators...)
}

func (e *Editor) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

func (e *Editor) Candidates() []atelier.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]atelier.User(nil), e.candidates...)
}

func (e *Editor) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// index must be called with the lock held.
func (e *Editor) index(userID string) int {
	for i, c := range e.collaborators {
		if c.ID == userID {
			return i
		}
	}
	return -1
}

func (e *Editor) fail(err error, fallback string) {
	e.notifier.Notify(atelier.Notification{
		Severity:    atelier.Destructive,
		Title:       "Error",
		Description: errors.MessageOr(err, fallback),
	})
}

func dedupe(collaborators []atelier.Collaborator) []atelier.Collaborator {
	seen := make(map[string]bool, len(collaborators))
	res := make([]atelier.Collaborator, 0, len(collaborators))
	for _, c := range collaborators {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		res = append(res, c)
	}
	return res
}
