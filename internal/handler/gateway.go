package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"api-gateway-go/internal/client"
	"api-gateway-go/internal/model"
	"api-gateway-go/internal/route"
	"api-gateway-go/internal/service"
)

// errorBody is the uniform error payload written by the gateway.
type errorBody struct {
	Detail string `json:"detail"`
}

// Gateway resolves inbound requests against the route table, runs them
// through the translator and writes the result.
type Gateway struct {
	routes     *route.Table
	translator *service.Translator
	backends   []io.Closer
	logger     *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewGateway creates a Gateway. Every passthrough route must target the user
// backend and every translate route the promo backend.
func NewGateway(routes *route.Table, translator *service.Translator, users *client.UserClient, promos *client.PromoClient, logger *slog.Logger) (*Gateway, error) {
	for _, rt := range routes.Routes() {
		switch {
		case rt.Strategy == route.Passthrough && rt.Backend != route.UserBackend,
			rt.Strategy == route.Translate && rt.Backend != route.PromoBackend:
			return nil, fmt.Errorf("gateway: route %s %s: no %s backend for strategy %s",
				rt.Method, rt.Pattern, rt.Backend, rt.Strategy)
		}
	}

	return &Gateway{
		routes:     routes,
		translator: translator,
		backends:   []io.Closer{users, promos},
		logger:     logger.With("component", "gateway"),
	}, nil
}

// Handle serves every request under the API prefix.
func (g *Gateway) Handle(c echo.Context) error {
	req := c.Request()

	rt, params, err := g.routes.Resolve(req.Method, req.URL.Path)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody{Detail: "Not Found"})
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		// BodyLimit reports oversized bodies as an *echo.HTTPError.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		g.logger.Warn("reading request body", "err", err, "path", req.URL.Path)
		return c.JSON(http.StatusBadRequest, errorBody{Detail: "Error reading request body"})
	}

	in := model.NewInboundRequest(req, body)

	var out *model.OutboundResponse
	switch rt.Strategy {
	case route.Passthrough:
		out, err = g.translator.Passthrough(req.Context(), in)
	case route.Translate:
		out, err = g.translator.Translate(req.Context(), rt.Operation, in, params)
	default:
		err = fmt.Errorf("gateway: unsupported strategy %s", rt.Strategy)
	}
	if err != nil {
		return g.mapError(c, rt, err)
	}

	return g.write(c, out)
}

func (g *Gateway) write(c echo.Context, out *model.OutboundResponse) error {
	h := c.Response().Header()
	for key, vals := range out.Header {
		h.Del(key)
		for _, v := range vals {
			h.Add(key, v)
		}
	}
	if out.ContentType != "" {
		h.Set(echo.HeaderContentType, out.ContentType)
	} else {
		// A nil value stops net/http from sniffing one.
		h[echo.HeaderContentType] = nil
	}

	c.Response().WriteHeader(out.StatusCode)
	if len(out.Body) == 0 {
		return nil
	}
	if _, err := c.Response().Write(out.Body); err != nil {
		g.logger.Error("writing response body",
			"err", err,
			"path", c.Request().URL.Path,
		)
	}
	return nil
}

// mapError turns a translator error into the gateway's error contract.
func (g *Gateway) mapError(c echo.Context, rt route.Route, err error) error {
	status := http.StatusInternalServerError
	detail := "Internal server error"

	attrs := []any{
		"err", err,
		"method", rt.Method,
		"pattern", rt.Pattern,
		"backend", string(rt.Backend),
	}

	var se *service.Error
	if errors.As(err, &se) {
		detail = se.Detail
		if se.Kind == service.KindUserService {
			status = http.StatusServiceUnavailable
		}
		attrs = append(attrs, "kind", se.Kind.String())
		if fk, ok := se.FailureKind(); ok {
			attrs = append(attrs, "failure", fk.String())
		}
	}

	if status >= http.StatusInternalServerError {
		g.logger.Error("request failed", attrs...)
	} else {
		g.logger.Warn("request failed", attrs...)
	}

	return c.JSON(status, errorBody{Detail: detail})
}

// Close releases both backend adapters. Each adapter is closed even if
// another fails; the errors are joined. Only the first call does any work.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		var errs []error
		for _, b := range g.backends {
			if err := b.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		g.closeErr = errors.Join(errs...)
	})
	return g.closeErr
}
