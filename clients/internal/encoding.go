package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/bobinette/atelier/errors"
)

// Route appends the segments to the request path, escaping each of them.
func Route(r *http.Request, segments ...string) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	r.URL.RawPath = path.Join(append([]string{"/", r.URL.EscapedPath()}, escaped...)...)
	r.URL.Path = path.Join(append([]string{"/", r.URL.Path}, segments...)...)
}

// EncodeJSONBody sets v as the JSON body of the request.
func EncodeJSONBody(r *http.Request, v interface{}) error {
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(v); err != nil {
		return err
	}

	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.ContentLength = int64(body.Len())
	r.Body = io.NopCloser(body)
	return nil
}

// DecodeResponse checks the status of res and decodes its body into v. A
// non 2xx status gives an API error carrying the status code and the
// message of the body; a body that cannot be decoded gives a malformed
// response error. An empty body leaves v untouched.
func DecodeResponse(res *http.Response, v interface{}) error {
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}

	if v == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.New("could not read response", errors.Transport(), errors.WithCause(err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.New("could not decode response", errors.Malformed(), errors.WithCause(err))
	}
	return nil
}

// NoBody is the encoder of requests without a body.
func NoBody(route ...string) func(context.Context, *http.Request, interface{}) error {
	return func(_ context.Context, r *http.Request, _ interface{}) error {
		Route(r, route...)
		return nil
	}
}

// MessageResponse is the body of calls that only return a message.
type MessageResponse struct {
	Message string `json:"message"`
}

func decodeError(res *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	data, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	_ = json.Unmarshal(data, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}

	return errors.New(msg, errors.API(), errors.WithCode(res.StatusCode))
}
