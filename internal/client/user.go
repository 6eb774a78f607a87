// Package client provides the backend adapters of the gateway: an HTTP
// passthrough client for the user service and a gRPC client for the promo
// service. Both normalize transport faults into *model.Failure.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"api-gateway-go/internal/config"
	"api-gateway-go/internal/metrics"
	"api-gateway-go/internal/model"
)

const backendUser = "user"

// UserClient forwards requests to the user service over a shared, pooled
// http.Client. It is safe for concurrent use.
type UserClient struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    *url.URL
	logger     *slog.Logger
	metrics    *metrics.Metrics

	closeOnce sync.Once
}

// NewUserClient creates a UserClient with connection pooling and the
// configured per-call timeout. The metrics parameter is optional.
func NewUserClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*UserClient, error) {
	u, err := url.Parse(cfg.UserService.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse user_service base_url: %w", err)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.UserService.IdleConnections,
		MaxIdleConnsPerHost: cfg.UserService.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &UserClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.UserService.TimeoutSeconds) * time.Second,
			// Redirects are the caller's business, not the gateway's.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		transport: transport,
		baseURL:   u,
		logger:    logger.With("component", "user_client"),
		metrics:   m,
	}, nil
}

// BaseURL returns the user service address the client is bound to.
func (c *UserClient) BaseURL() string {
	return c.baseURL.String()
}

// Forward sends req to the user service unchanged apart from Host and
// hop-by-hop headers. Any HTTP response, whatever its status, is returned as
// a BackendResponse; only transport faults return a *model.Failure.
func (c *UserClient) Forward(ctx context.Context, req *model.InboundRequest) (*model.BackendResponse, error) {
	target := c.buildURL(req.Path, req.Query)

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &model.Failure{Kind: model.FailureUnreachable, Message: err.Error(), Err: fmt.Errorf("build upstream request: %w", err)}
	}
	httpReq.Header = forwardHeaders(req.Header)

	c.logger.Debug("forwarding request",
		"method", req.Method,
		"path", req.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		f := model.NewFailure(classifyTransportError(err), err)
		c.metrics.ObserveBackend(backendUser, "forward", time.Since(start).Seconds(), f.Kind.String())
		return nil, f
	}
	defer func() { _ = resp.Body.Close() }()

	// The full body is read before anything is written to the caller, so a
	// broken backend stream never yields a partial response.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		f := model.NewFailure(model.FailureMalformedResponse, fmt.Errorf("read upstream body: %w", err))
		c.metrics.ObserveBackend(backendUser, "forward", time.Since(start).Seconds(), f.Kind.String())
		return nil, f
	}
	c.metrics.ObserveBackend(backendUser, "forward", time.Since(start).Seconds(), "")

	return &model.BackendResponse{
		StatusCode: resp.StatusCode,
		Header:     forwardHeaders(resp.Header),
		Body:       data,
	}, nil
}

// Close releases pooled connections. Calls after the first are no-ops.
func (c *UserClient) Close() error {
	c.closeOnce.Do(func() {
		c.transport.CloseIdleConnections()
		c.logger.Info("user client closed")
	})
	return nil
}

func (c *UserClient) buildURL(path string, query map[string]string) string {
	u := *c.baseURL
	u.Path = joinPath(c.baseURL.Path, path)
	u.RawPath = ""
	q := make(url.Values, len(query))
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}

func joinPath(base, path string) string {
	switch {
	case base == "" || base == "/":
		return path
	case base[len(base)-1] == '/' && len(path) > 0 && path[0] == '/':
		return base + path[1:]
	default:
		return base + path
	}
}

// classifyTransportError separates deadline expiry from every other
// transport fault.
func classifyTransportError(err error) model.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailureTimeout
	}
	return model.FailureUnreachable
}
