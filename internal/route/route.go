// Package route holds the gateway's static route table.
package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIPrefix is the path prefix of every public gateway route.
const APIPrefix = "/api/v1"

// Strategy selects how a matched request reaches its backend.
type Strategy int

const (
	// Passthrough forwards the request bytes to an HTTP backend unchanged.
	Passthrough Strategy = iota + 1
	// Translate maps the request onto a typed RPC call and back to JSON.
	Translate
)

func (s Strategy) String() string {
	switch s {
	case Passthrough:
		return "passthrough"
	case Translate:
		return "translate"
	default:
		return "unknown"
	}
}

// Backend names the service a route talks to.
type Backend string

const (
	UserBackend  Backend = "user"
	PromoBackend Backend = "promo"
)

// Operation names the RPC a Translate route invokes.
type Operation string

const (
	OpCreatePromo Operation = "create"
	OpListPromos  Operation = "list"
	OpGetPromo    Operation = "get"
	OpUpdatePromo Operation = "update"
	OpDeletePromo Operation = "delete"
)

// Route maps a method and path pattern to a strategy and backend.
// Pattern segments of the form {name} match any single non-empty segment.
type Route struct {
	Method    string
	Pattern   string
	Strategy  Strategy
	Backend   Backend
	Operation Operation // set for Translate routes only

	segments []string
}

// Params holds placeholder values captured while matching a pattern.
type Params map[string]string

// Table resolves requests to routes. It is immutable once built.
type Table struct {
	routes []Route
}

// ErrNoMatch is returned by Resolve when no route matches.
var ErrNoMatch = errors.New("route: no match")

// New validates routes and builds a Table. Empty methods or patterns,
// malformed placeholders and duplicate (method, pattern) pairs are rejected.
// Two patterns that differ only in placeholder names count as duplicates.
func New(routes []Route) (*Table, error) {
	seen := make(map[string]string, len(routes))
	t := &Table{routes: make([]Route, 0, len(routes))}

	for i, r := range routes {
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if r.Method == "" {
			return nil, fmt.Errorf("route %d: empty method", i)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("route %d (%s): empty pattern", i, r.Method)
		}
		if r.Pattern[0] != '/' {
			return nil, fmt.Errorf("route %s %s: pattern must start with '/'", r.Method, r.Pattern)
		}
		if r.Strategy != Passthrough && r.Strategy != Translate {
			return nil, fmt.Errorf("route %s %s: unknown strategy", r.Method, r.Pattern)
		}
		if r.Backend == "" {
			return nil, fmt.Errorf("route %s %s: empty backend", r.Method, r.Pattern)
		}
		if r.Strategy == Translate && r.Operation == "" {
			return nil, fmt.Errorf("route %s %s: translate route needs an operation", r.Method, r.Pattern)
		}

		segs := split(r.Pattern)
		shape := make([]string, len(segs))
		for j, s := range segs {
			if name, ok := placeholder(s); ok {
				if name == "" {
					return nil, fmt.Errorf("route %s %s: empty placeholder name", r.Method, r.Pattern)
				}
				shape[j] = "{}"
				continue
			}
			if strings.ContainsAny(s, "{}") {
				return nil, fmt.Errorf("route %s %s: malformed placeholder %q", r.Method, r.Pattern, s)
			}
			shape[j] = s
		}

		key := r.Method + " /" + strings.Join(shape, "/")
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("route %s %s: duplicates %s", r.Method, r.Pattern, prev)
		}
		seen[key] = r.Pattern

		r.segments = segs
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// Resolve returns the route matching method and path together with any
// captured placeholder values. A literal segment beats a placeholder at the
// same position, so /promos/export would win over /promos/{id}.
func (t *Table) Resolve(method, path string) (Route, Params, error) {
	method = strings.ToUpper(method)
	segs := split(path)

	best := -1
	var bestParams Params
	bestLiterals := -1
	for i := range t.routes {
		r := &t.routes[i]
		if r.Method != method {
			continue
		}
		params, literals, ok := match(r.segments, segs)
		if !ok {
			continue
		}
		if literals > bestLiterals {
			best, bestParams, bestLiterals = i, params, literals
		}
	}
	if best < 0 {
		return Route{}, nil, ErrNoMatch
	}
	return t.routes[best], bestParams, nil
}

// Routes returns a copy of the table's routes in registration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

func match(pattern, path []string) (Params, int, bool) {
	if len(pattern) != len(path) {
		return nil, 0, false
	}
	var params Params
	literals := 0
	for i, p := range pattern {
		if name, ok := placeholder(p); ok {
			if path[i] == "" {
				return nil, 0, false
			}
			if params == nil {
				params = make(Params)
			}
			params[name] = path[i]
			continue
		}
		if p != path[i] {
			return nil, 0, false
		}
		literals++
	}
	return params, literals, true
}

func placeholder(seg string) (string, bool) {
	if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

// split breaks a path into segments, ignoring one trailing slash.
func split(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Default returns the gateway's public routes.
func Default() []Route {
	return []Route{
		{Method: http.MethodPost, Pattern: APIPrefix + "/auth/register", Strategy: Passthrough, Backend: UserBackend},
		{Method: http.MethodPost, Pattern: APIPrefix + "/auth/login", Strategy: Passthrough, Backend: UserBackend},
		{Method: http.MethodGet, Pattern: APIPrefix + "/users/profile", Strategy: Passthrough, Backend: UserBackend},
		{Method: http.MethodPut, Pattern: APIPrefix + "/users/profile", Strategy: Passthrough, Backend: UserBackend},
		{Method: http.MethodPost, Pattern: APIPrefix + "/promos", Strategy: Translate, Backend: PromoBackend, Operation: OpCreatePromo},
		{Method: http.MethodGet, Pattern: APIPrefix + "/promos", Strategy: Translate, Backend: PromoBackend, Operation: OpListPromos},
		{Method: http.MethodGet, Pattern: APIPrefix + "/promos/{id}", Strategy: Translate, Backend: PromoBackend, Operation: OpGetPromo},
		{Method: http.MethodPut, Pattern: APIPrefix + "/promos/{id}", Strategy: Translate, Backend: PromoBackend, Operation: OpUpdatePromo},
		{Method: http.MethodDelete, Pattern: APIPrefix + "/promos/{id}", Strategy: Translate, Backend: PromoBackend, Operation: OpDeletePromo},
	}
}

// NewDefault builds the Table of Default routes.
func NewDefault() (*Table, error) {
	return New(Default())
}
