// Package module mounts prefixed HTTP sub-applications, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/cadence/pkg/middleware"
)

// Module is an HTTP handler that strips its prefix and delegates to an inner router
// with its own middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
	handler    http.Handler
}

// New creates a Module with the given single-level prefix (e.g. "/api").
// Panics if the prefix is empty, missing a leading slash, or multi-level.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	m := &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
	m.handler = m.middleware.Apply(router)
	return m
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use adds middleware to the module's stack. It must be called before the
// module serves its first request.
func (m *Module) Use(mw ...func(http.Handler) http.Handler) {
	m.middleware.Use(mw...)
	m.handler = m.middleware.Apply(m.router)
}

// ServeHTTP strips the module prefix from the request path and dispatches to the inner router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.handler.ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
