package apisvc

import (
	"net/http"
	"net/http/httptest"
)

// handlerTransport serves requests with an in-process handler, e.g. the mock backend.
type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.handler.ServeHTTP(rec, req)
	}()

	select {
	case <-done:
		return rec.Result(), nil
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}
