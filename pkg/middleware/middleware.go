// Package middleware provides HTTP middleware and an ordered middleware stack.
package middleware

import "net/http"

// Func wraps an http.Handler with additional behavior.
type Func func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
// The first middleware added is the outermost wrapper.
type System interface {
	Use(mw ...func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	fns []Func
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw ...func(http.Handler) http.Handler) {
	for _, fn := range mw {
		s.fns = append(s.fns, fn)
	}
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.fns) - 1; i >= 0; i-- {
		handler = s.fns[i](handler)
	}
	return handler
}
