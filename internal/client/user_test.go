package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"api-gateway-go/internal/config"
	"api-gateway-go/internal/metrics"
	"api-gateway-go/internal/model"
)

func newTestUserClient(t *testing.T, baseURL string, timeoutSeconds int) *UserClient {
	t.Helper()
	cfg := &config.Config{
		UserService: config.UserServiceConfig{
			BaseURL:         baseURL,
			TimeoutSeconds:  timeoutSeconds,
			IdleConnections: 10,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewUserClient(cfg, logger, metrics.New())
	if err != nil {
		t.Fatalf("NewUserClient() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestUserClient_ForwardPreservesRequest(t *testing.T) {
	var got *http.Request
	var gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u1"}`))
	}))
	defer upstream.Close()

	c := newTestUserClient(t, upstream.URL, 10)
	req := &model.InboundRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/auth/register",
		Header: http.Header{
			"Host":            {"gateway.example.com"},
			"Authorization":   {"Bearer t0k"},
			"X-Custom":        {"a", "b"},
			"Content-Type":    {"application/json"},
			"Connection":      {"keep-alive, X-Drop-Me"},
			"X-Drop-Me":       {"1"},
			"Keep-Alive":      {"timeout=5"},
			"X-Forwarded-For": {"10.0.0.1"},
		},
		Query: map[string]string{"ref": "mail"},
		Body:  []byte(`{"login":"alice"}`),
	}

	resp, err := c.Forward(context.Background(), req)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if string(resp.Body) != `{"id":"u1"}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	if got.Method != http.MethodPost || got.URL.Path != "/api/v1/auth/register" {
		t.Errorf("upstream saw %s %s", got.Method, got.URL.Path)
	}
	if got.URL.Query().Get("ref") != "mail" {
		t.Errorf("query = %q", got.URL.RawQuery)
	}
	if gotBody != `{"login":"alice"}` {
		t.Errorf("body = %q", gotBody)
	}
	if got.Host == "gateway.example.com" {
		t.Error("inbound Host must not be forwarded")
	}

	tests := []struct {
		key  string
		want []string
	}{
		{"Authorization", []string{"Bearer t0k"}},
		{"X-Custom", []string{"a", "b"}},
		{"X-Forwarded-For", []string{"10.0.0.1"}},
		{"X-Drop-Me", nil},
		{"Keep-Alive", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, got.Header.Values(tt.key)); diff != "" {
			t.Errorf("header %s mismatch (-want +got):\n%s", tt.key, diff)
		}
	}
}

func TestUserClient_BackendStatusIsNotAFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":{"code":409,"message":"User with this login already exists"}}`))
	}))
	defer upstream.Close()

	c := newTestUserClient(t, upstream.URL, 10)
	resp, err := c.Forward(context.Background(), &model.InboundRequest{Method: http.MethodPost, Path: "/api/v1/auth/register"})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestUserClient_Unreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	c := newTestUserClient(t, url, 5)
	_, err := c.Forward(context.Background(), &model.InboundRequest{Method: http.MethodGet, Path: "/api/v1/users/profile"})

	var f *model.Failure
	if !errors.As(err, &f) {
		t.Fatalf("Forward() error = %v, want *model.Failure", err)
	}
	if f.Kind != model.FailureUnreachable {
		t.Errorf("Kind = %v, want %v", f.Kind, model.FailureUnreachable)
	}
}

func TestUserClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer upstream.Close()
	defer close(release)

	c := newTestUserClient(t, upstream.URL, 1)
	start := time.Now()
	_, err := c.Forward(context.Background(), &model.InboundRequest{Method: http.MethodGet, Path: "/slow"})

	var f *model.Failure
	if !errors.As(err, &f) {
		t.Fatalf("Forward() error = %v, want *model.Failure", err)
	}
	if f.Kind != model.FailureTimeout {
		t.Errorf("Kind = %v, want %v", f.Kind, model.FailureTimeout)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestUserClient_CloseIsIdempotent(t *testing.T) {
	c := newTestUserClient(t, "http://127.0.0.1:1", 1)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		path  string
		query map[string]string
		want  string
	}{
		{"root base", "http://users:8000", "/api/v1/auth/login", nil, "http://users:8000/api/v1/auth/login"},
		{"base with path", "http://users:8000/svc/", "/api/v1/auth/login", nil, "http://users:8000/svc/api/v1/auth/login"},
		{"query", "http://users:8000", "/p", map[string]string{"a": "1", "b": "x y"}, "http://users:8000/p?a=1&b=x+y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestUserClient(t, tt.base, 1)
			if got := c.buildURL(tt.path, tt.query); got != tt.want {
				t.Errorf("buildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForwardHeaders(t *testing.T) {
	src := http.Header{
		"Host":                {"a"},
		"Accept":              {"*/*"},
		"Proxy-Authorization": {"Basic x"},
		"Transfer-Encoding":   {"chunked"},
		"Upgrade":             {"websocket"},
		"Te":                  {"trailers"},
	}
	got := forwardHeaders(src)
	want := http.Header{"Accept": {"*/*"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("forwardHeaders() mismatch (-want +got):\n%s", diff)
	}
	if len(src) != 6 {
		t.Error("forwardHeaders must not modify its input")
	}
	if h := forwardHeaders(nil); h == nil {
		t.Error("forwardHeaders(nil) = nil, want empty header")
	}
}
