package atelier

import (
	"time"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AccessLevel is the permission a collaborator holds on a project.
type AccessLevel string

const (
	View AccessLevel = "view"
	Edit AccessLevel = "edit"
)

func (l AccessLevel) Valid() bool {
	return l == View || l == Edit
}

type Collaborator struct {
	User
	Access AccessLevel `json:"access"`
}

// Grant is the wire form of a collaborator when committing a project's
// access list.
type Grant struct {
	ID     string      `json:"id"`
	Access AccessLevel `json:"access"`
}

type ProjectKind string

const (
	Drafts   ProjectKind = "drafts"
	Deployed ProjectKind = "deployed"
)

func (k ProjectKind) Valid() bool {
	return k == Drafts || k == Deployed
}

type Project struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"`
	Thumbnail  string    `json:"thumbnail"`
	LastEdited time.Time `json:"lastEdited"`
}

type Subscription struct {
	Plan     string  `json:"plan"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Tokens   int64   `json:"tokens"`
}

// Plan is a subscription tier. A nil price or token allowance means the
// plan is negotiated ("Custom").
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
	Tokens   *int64   `json:"tokens"`
	Features []string `json:"features"`
}

type TopUpPackage struct {
	ID       string  `json:"id"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Tokens   int64   `json:"tokens"`
}
