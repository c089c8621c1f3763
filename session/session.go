package session

import (
	"context"

	"github.com/bobinette/atelier"
)

// Keys under which the tokens are persisted. Only the session stores read
// or write them.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// DefaultEntryPoint is where Logout sends the user.
const DefaultEntryPoint = "/login"

// State is a snapshot of the authentication state. User may be nil while
// Authenticated is true: the flag is seeded from storage at start up but the
// user is only known after the next login.
type State struct {
	Authenticated bool
	User          *atelier.User
}

// Tokens is the credential pair. It is only meaningful when both are set.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

func (t Tokens) Valid() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

func (t Tokens) empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

type LoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *atelier.User `json:"user"`
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Register(ctx context.Context, email, password string) error
}

// Store is the durable storage of the token pair. Save and Clear always
// act on both tokens at once.
type Store interface {
	Load() (Tokens, error)
	Save(Tokens) error
	Clear() error
}

// Navigator performs the hard navigation that follows a logout.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }
