package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/trezcool/gyaanbuddy/core"
)

// Response is a canned answer of FakeAPI.
type Response struct {
	Body  string
	Err   error
	Delay time.Duration
}

// FakeAPI answers requests from canned responses keyed by "METHOD /path".
type FakeAPI struct {
	mu        sync.Mutex
	responses map[string]Response
	requests  []core.APIRequest
	sessions  int
}

var _ core.APIClient = (*FakeAPI)(nil)

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{responses: make(map[string]Response)}
}

// On sets the response of method path. body may be a string or any JSON-serializable value.
func (f *FakeAPI) On(method, path string, body interface{}) *FakeAPI {
	var s string
	switch b := body.(type) {
	case string:
		s = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		s = string(data)
	}
	return f.Respond(method, path, Response{Body: s})
}

// Fail makes method path fail with err.
func (f *FakeAPI) Fail(method, path string, err error) *FakeAPI {
	return f.Respond(method, path, Response{Err: err})
}

func (f *FakeAPI) Respond(method, path string, resp Response) *FakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = resp
	return f
}

func (f *FakeAPI) Do(ctx context.Context, req core.APIRequest) ([]byte, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	resp, ok := f.responses[req.Method+" "+req.Path]
	f.mu.Unlock()

	if !ok {
		return nil, &core.APIError{Status: http.StatusNotFound, Message: fmt.Sprintf("no route %s %s", req.Method, req.Path)}
	}
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return []byte(resp.Body), nil
}

func (f *FakeAPI) SessionStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions++
}

// Sessions counts the SessionStarted calls.
func (f *FakeAPI) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

func (f *FakeAPI) Requests() []core.APIRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.APIRequest(nil), f.requests...)
}

// Last returns the last request sent, or the zero request.
func (f *FakeAPI) Last() core.APIRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return core.APIRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// BodyJSON re-encodes the body of req for comparisons.
func BodyJSON(req core.APIRequest) string {
	data, err := json.Marshal(req.Body)
	if err != nil {
		panic(err)
	}
	return string(data)
}
