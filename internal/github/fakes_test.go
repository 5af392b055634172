package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
)

type reply struct {
	data string
	err  error
}

type fakeGraphQL struct {
	replies []reply
	queries []string
	vars    []map[string]interface{}
}

func (f *fakeGraphQL) DoWithContext(_ context.Context, query string, variables map[string]interface{}, response interface{}) error {
	f.queries = append(f.queries, query)
	f.vars = append(f.vars, variables)
	if len(f.replies) == 0 {
		return fmt.Errorf("unexpected GraphQL call")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return r.err
	}
	return json.Unmarshal([]byte(r.data), response)
}

type restCall struct {
	method string
	path   string
	body   string
}

type fakeREST struct {
	replies []reply
	calls   []restCall
}

func (f *fakeREST) DoWithContext(_ context.Context, method, path string, body io.Reader, response interface{}) error {
	call := restCall{method: method, path: path}
	if body != nil {
		b, _ := io.ReadAll(body)
		call.body = string(b)
	}
	f.calls = append(f.calls, call)
	if len(f.replies) == 0 {
		return fmt.Errorf("unexpected REST call %s %s", method, path)
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return r.err
	}
	if response != nil && r.data != "" {
		return json.Unmarshal([]byte(r.data), response)
	}
	return nil
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func newTestClient(rest restDoer, gql graphQLDoer, opts Options) (*Client, *sleepRecorder) {
	c := newClient(rest, gql, opts)
	rec := &sleepRecorder{}
	c.sleep = rec.sleep
	return c, rec
}

func httpError(status int, message string) error {
	return &api.HTTPError{
		StatusCode: status,
		Message:    message,
		RequestURL: &url.URL{Scheme: "https", Host: "api.github.com", Path: "/test"},
	}
}
