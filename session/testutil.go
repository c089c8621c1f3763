package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore runs the behaviour every Store implementation must have.
func TestStore(t *testing.T, store Store) {
	// Nothing stored yet
	testLoad(t, store, Tokens{}, "empty store")

	// Clearing an empty store is fine
	require.NoError(t, store.Clear(), "clearing an empty store should not fail")

	// Save a pair
	tokens := Tokens{AccessToken: "T1", RefreshToken: "T2"}
	require.NoError(t, store.Save(tokens), "save should not fail")
	testLoad(t, store, tokens, "after save")

	// Saving again replaces both tokens
	tokens = Tokens{AccessToken: "T3", RefreshToken: "T4"}
	require.NoError(t, store.Save(tokens), "second save should not fail")
	testLoad(t, store, tokens, "after second save")

	// Clear removes both
	require.NoError(t, store.Clear(), "clear should not fail")
	testLoad(t, store, Tokens{}, "after clear")

	// Clear is idempotent
	require.NoError(t, store.Clear(), "second clear should not fail")
	testLoad(t, store, Tokens{}, "after second clear")
}

func testLoad(t *testing.T, store Store, expected Tokens, name string) {
	tokens, err := store.Load()
	if assert.NoError(t, err, "%s - load should not fail", name) {
		assert.Equal(t, expected, tokens, "%s - tokens should be equal", name)
	}
}
