// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group organizes routes under a common prefix. Children inherit the
// parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns returns the fully qualified "METHOD /path" patterns of the group
// in registration order.
func (g Group) Patterns() []string {
	var out []string
	g.walk("", func(pattern string, _ http.HandlerFunc) {
		out = append(out, pattern)
	})
	return out
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		group.walk("", func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
		})
	}
}

func (g Group) walk(parentPrefix string, fn func(pattern string, h http.HandlerFunc)) {
	prefix := parentPrefix + g.Prefix
	for _, route := range g.Routes {
		fn(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}
