// Package model defines the request, response and failure types shared by the
// gateway components.
package model

import (
	"net/http"
)

// InboundRequest is a read-only snapshot of the request that triggered a
// backend call. Query holds one value per key; the last occurrence wins.
type InboundRequest struct {
	Method string
	Path   string
	Header http.Header
	Query  map[string]string
	Body   []byte
}

// NewInboundRequest snapshots r. The body must already be read by the caller.
func NewInboundRequest(r *http.Request, body []byte) *InboundRequest {
	query := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			query[key] = vals[len(vals)-1]
		}
	}
	return &InboundRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Query:  query,
		Body:   body,
	}
}

// QueryParam returns the value of a query parameter and whether it was present.
func (r *InboundRequest) QueryParam(key string) (string, bool) {
	v, ok := r.Query[key]
	return v, ok
}

// BackendResponse is a response received from an HTTP backend. Any status
// code counts as a response; only transport faults become a Failure.
type BackendResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OutboundResponse is what the gateway writes back to the caller.
type OutboundResponse struct {
	StatusCode  int
	Header      http.Header
	ContentType string
	Body        []byte
}
