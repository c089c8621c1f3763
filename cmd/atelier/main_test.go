package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/atelier"
	"github.com/bobinette/atelier/apitest"
	"github.com/bobinette/atelier/log"
)

var (
	alice = atelier.User{ID: "u1", Name: "Alice", Email: "alice@atelier.dev"}
	bob   = atelier.User{ID: "u2", Name: "Bob", Email: "bob@atelier.dev"}
	carol = atelier.User{ID: "u3", Name: "Carol", Email: "carol@atelier.dev"}
)

func setup(t *testing.T) *apitest.Server {
	server := apitest.New()
	server.AddUser(alice, "secret")
	server.AddUser(bob, "secret")
	server.AddUser(carol, "secret")
	server.AddProject(atelier.Project{ID: "p1", Title: "Landing page", Visibility: "private"}, atelier.Drafts,
		atelier.Collaborator{User: bob, Access: atelier.View},
	)

	price := 49.0
	allowance := int64(600000)
	server.SetPlans(
		atelier.Plan{ID: "free", Name: "Free"},
		atelier.Plan{ID: "pro", Name: "Pro", Price: &price, Currency: "USD", Tokens: &allowance},
	)
	server.SetPackages(atelier.TopUpPackage{ID: "small", Price: 10, Currency: "USD", Tokens: 50000})
	server.SetSubscription(atelier.Subscription{Plan: "free", Currency: "USD", Tokens: 0})

	t.Setenv("ATELIER_API_URL", server.URL)
	t.Setenv("ATELIER_SESSION_FILE", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("ATELIER_PASSWORD", "")
	return server
}

func run(t *testing.T, args ...string) (string, error) {
	out, errOut, err := runSplit(t, args...)
	return out + errOut, err
}

// runSplit keeps the output and the error output apart.
func runSplit(t *testing.T, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(append([]string{"--env", "test", "--config", filepath.Join("testdata", "missing.toml")}, args...))

	err := execute()
	return out.String(), errOut.String(), err
}

func TestCLI(t *testing.T) {
	server := setup(t)
	defer server.Close()
	defer func() {
		if boltDriver != nil {
			boltDriver.Close()
			boltDriver = nil
		}
	}()

	out, err := run(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)

	_, err = run(t, "projects", "list", "--type", "drafts")
	if assert.Error(t, err, "projects should require a session") {
		assert.Equal(t, "not logged in, run `atelier login` first", err.Error())
	}

	_, err = run(t, "login", "--email", alice.Email, "--password", "wrong")
	if assert.Error(t, err) {
		assert.Equal(t, "Email or password is incorrect", err.Error())
	}

	out, err = run(t, "login", "--email", alice.Email, "--password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as Alice <alice@atelier.dev>\n", out)

	// The session survives the process
	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in, session expires")

	// Projects
	out, err = run(t, "projects", "list", "--type", "drafts")
	require.NoError(t, err)
	assert.Contains(t, out, "Landing page")

	out, err = run(t, "projects", "rename", "p1", "Home", "page")
	require.NoError(t, err)
	assert.Equal(t, "Project renamed successfully\n", out)
	p, _ := server.Project("p1")
	assert.Equal(t, "Home page", p.Title)

	out, err = run(t, "projects", "link", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Editor: "+server.URL+"/editor/p1\nShare:  "+server.URL+"/p/p1\n", out)

	_, err = run(t, "projects", "list", "--type", "archived")
	assert.Error(t, err, "unknown kinds should be rejected")

	// Access
	out, err = run(t, "access", "show", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "bob@atelier.dev")

	_, err = run(t, "access", "add", "p1", carol.Email, "--access", "edit")
	require.NoError(t, err)
	assert.Equal(t, []atelier.Collaborator{
		{User: bob, Access: atelier.View},
		{User: carol, Access: atelier.Edit},
	}, server.Access("p1"))

	_, err = run(t, "access", "set", "p1", bob.ID, "edit")
	require.NoError(t, err)
	_, err = run(t, "access", "remove", "p1", carol.ID)
	require.NoError(t, err)
	assert.Equal(t, []atelier.Collaborator{{User: bob, Access: atelier.Edit}}, server.Access("p1"))

	reqs := server.RequestsTo(http.MethodPut, "/api/projects/p1/access")
	require.Len(t, reqs, 3)
	assert.JSONEq(t, `{"users":[{"id":"u2","access":"edit"}]}`, string(reqs[2].Body))

	// A failed fetch must not lead to a commit of an empty list
	server.Fail(http.MethodGet, "/api/projects/p1/access", 500, "boom")
	out, err = run(t, "access", "remove", "p1", bob.ID)
	assert.Error(t, err)
	assert.Contains(t, out, "Error: boom")
	assert.Len(t, server.RequestsTo(http.MethodPut, "/api/projects/p1/access"), 3)

	// Subscription
	out, err = run(t, "subscription")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan:   free (Free)")
	assert.Contains(t, out, "You've run out of tokens!")

	out, err = run(t, "subscription", "topup", "small")
	require.NoError(t, err)
	assert.Contains(t, out, "Token top-up purchased successfully")
	assert.Contains(t, out, "Tokens: 50,000")

	_, err = run(t, "subscription", "change")
	if assert.Error(t, err) {
		assert.Equal(t, "No plan selected to change to", err.Error())
	}

	out, err = run(t, "subscription", "change", "pro")
	require.NoError(t, err)
	assert.Equal(t, "Subscription updated successfully\n", out)

	// Logout
	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)
}

func TestCLI_ReportsErrors(t *testing.T) {
	server := setup(t)
	defer server.Close()
	defer func() {
		if boltDriver != nil {
			boltDriver.Close()
			boltDriver = nil
		}
	}()

	tts := map[string]struct {
		args   []string
		stderr string
	}{
		"without session": {
			args:   []string{"projects", "list"},
			stderr: "Error: not logged in, run `atelier login` first\n",
		},
		"wrong password": {
			args:   []string{"login", "--email", alice.Email, "--password", "wrong"},
			stderr: "Error: Email or password is incorrect\n",
		},
		"subscription without session": {
			args:   []string{"subscription", "change", "pro"},
			stderr: "Error: not logged in, run `atelier login` first\n",
		},
	}

	for name, tt := range tts {
		out, errOut, err := runSplit(t, tt.args...)
		assert.Error(t, err, "%s - command should fail", name)
		assert.Equal(t, "", out, "%s - nothing on the output", name)
		assert.Equal(t, tt.stderr, errOut, "%s - error output", name)
	}

	// Unreachable API
	server.Close()
	_, errOut, err := runSplit(t, "login", "--email", alice.Email, "--password", "secret")
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(errOut, "Error: "), "the failure should be reported, got %q", errOut)
	assert.True(t, len(errOut) > len("Error: \n"), "the failure should carry a message")
}

func TestLoadConfiguration(t *testing.T) {
	logger = log.Discard()
	t.Setenv("ATELIER_API_URL", "")

	cfg, err := loadConfiguration(filepath.Join("testdata", "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.API.URL)
	assert.Equal(t, cfg.API.URL, cfg.App.URL, "the app should default to the api origin")

	file := filepath.Join(t.TempDir(), "config.toml")
	content := "[app]\nurl = \"https://app.atelier.dev\"\n\n[api]\nurl = \"https://api.atelier.dev\"\ntimeout = \"0s\"\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))

	cfg, err = loadConfiguration(file)
	require.NoError(t, err)
	assert.Equal(t, "https://app.atelier.dev", cfg.App.URL)
	assert.Equal(t, "https://api.atelier.dev", cfg.API.URL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout.Duration)
}

func TestPick(t *testing.T) {
	candidates := []atelier.User{bob, carol}

	u, ok := pick(candidates, "u3")
	assert.True(t, ok)
	assert.Equal(t, carol, u)

	u, ok = pick(candidates, "BOB@atelier.dev")
	assert.True(t, ok)
	assert.Equal(t, bob, u)

	_, ok = pick(candidates, "someone")
	assert.False(t, ok, "ambiguous reference should not pick")

	u, ok = pick([]atelier.User{carol}, "car")
	assert.True(t, ok)
	assert.Equal(t, carol, u)
}

func TestPrintPlans(t *testing.T) {
	plans := []atelier.Plan{
		{ID: "", Name: "Legacy"},
		{ID: "free", Name: "Free"},
	}

	var out bytes.Buffer
	require.NoError(t, printPlans(&out, plans, atelier.Plan{}, false))
	assert.NotContains(t, out.String(), "*", "no plan should be marked without a current plan")

	out.Reset()
	require.NoError(t, printPlans(&out, plans, plans[1], true))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.False(t, strings.HasPrefix(lines[1], "*"), "legacy should not be marked")
	assert.True(t, strings.HasPrefix(lines[2], "*"), "free should be marked")
}

func TestGauge(t *testing.T) {
	assert.Equal(t, "[....................] 0%", gauge(0))
	assert.Equal(t, "[##########..........] 50%", gauge(50))
	assert.Equal(t, "[####################] 100%", gauge(100))
}
