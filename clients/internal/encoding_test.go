package internal

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/atelier/errors"
)

func TestRoute(t *testing.T) {
	tts := map[string]struct {
		base     string
		segments []string
		path     string
		escaped  string
	}{
		"no base path": {
			base:     "http://api.test",
			segments: []string{"api", "projects"},
			path:     "/api/projects",
			escaped:  "/api/projects",
		},
		"base path": {
			base:     "http://api.test/v1",
			segments: []string{"api", "projects", "p1", "access"},
			path:     "/v1/api/projects/p1/access",
			escaped:  "/v1/api/projects/p1/access",
		},
		"escaped segment": {
			base:     "http://api.test",
			segments: []string{"api", "projects", "a b/c"},
			path:     "/api/projects/a b/c",
			escaped:  "/api/projects/a%20b%2Fc",
		},
	}

	for name, tt := range tts {
		u, err := url.Parse(tt.base)
		require.NoError(t, err)

		r := &http.Request{URL: u}
		Route(r, tt.segments...)
		assert.Equal(t, tt.path, r.URL.Path, "%s - path", name)
		assert.Equal(t, tt.escaped, r.URL.EscapedPath(), "%s - escaped path", name)
	}
}

func TestDecodeResponse(t *testing.T) {
	tts := map[string]struct {
		code    int
		body    string
		value   string
		message string
		errCode int
		kind    errors.Kind
	}{
		"valid body": {
			code:  200,
			body:  `{"message":"ok"}`,
			value: "ok",
		},
		"empty body": {
			code: 200,
			body: "",
		},
		"no content": {
			code: 204,
		},
		"invalid json": {
			code:    200,
			body:    "<html>",
			message: "could not decode response",
			errCode: 500,
			kind:    errors.KindMalformed,
		},
		"api error with message": {
			code:    400,
			body:    `{"message":"Email or password is incorrect"}`,
			message: "Email or password is incorrect",
			errCode: 400,
			kind:    errors.KindAPI,
		},
		"api error with error field": {
			code:    500,
			body:    `{"error":"database unavailable"}`,
			message: "database unavailable",
			errCode: 500,
			kind:    errors.KindAPI,
		},
		"api error without body": {
			code:    502,
			body:    "",
			message: "Bad Gateway",
			errCode: 502,
			kind:    errors.KindAPI,
		},
		"api error with html body": {
			code:    404,
			body:    "<html>not found</html>",
			message: "Not Found",
			errCode: 404,
			kind:    errors.KindAPI,
		},
	}

	for name, tt := range tts {
		rec := httptest.NewRecorder()
		rec.WriteHeader(tt.code)
		rec.WriteString(tt.body)

		var body MessageResponse
		err := DecodeResponse(rec.Result(), &body)
		if tt.kind == errors.KindUnknown {
			if assert.NoError(t, err, "%s - should not fail", name) {
				assert.Equal(t, tt.value, body.Message, "%s - decoded value", name)
			}
			continue
		}

		if assert.Error(t, err, "%s - should fail", name) {
			assert.Equal(t, tt.message, err.Error(), "%s - message", name)
			errors.AssertCode(t, err, tt.errCode)
			errors.AssertKind(t, err, tt.kind)
		}
	}
}
