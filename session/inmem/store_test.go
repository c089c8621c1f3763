package inmem

import (
	"testing"

	"github.com/bobinette/atelier/session"
)

func TestStore(t *testing.T) {
	session.TestStore(t, NewStore())
}
