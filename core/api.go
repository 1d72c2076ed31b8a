package core

import (
	"context"
	"io"
	"net/url"
)

type (
	// FormFile is one binary part of a multipart payload.
	FormFile struct {
		Field    string
		Filename string
		Content  io.Reader
	}

	// FormData is a multipart/form-data payload.
	FormData struct {
		Fields map[string]string
		Files  []FormFile
	}

	APIRequest struct {
		Method  string
		Path    string // relative to the API base URL, e.g. "/users/teachers"
		Query   url.Values
		Body    interface{} // JSON-serializable; ignored when Form is set
		Form    *FormData
		Headers map[string]string
	}

	// APIClient is anything that can talk to the Gyaan Buddy REST API.
	// Do returns the raw response body of a 2xx response.
	APIClient interface {
		Do(ctx context.Context, req APIRequest) ([]byte, error)
	}
)

// PublicPaths are endpoints reachable without a session.
var PublicPaths = []string{"/auth/login", "/auth/register", "/auth/forgot-password"}

// IsPublicPath reports whether path needs no session.
func IsPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// SessionAware is implemented by clients that need to know when a new session starts.
type SessionAware interface {
	SessionStarted()
}
