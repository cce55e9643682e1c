package gateway

import (
	"net/http"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Router wraps http.ServeMux and applies middleware in registration order,
// so the first Use is the outermost layer.
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates a new router
func NewRouter(mux *http.ServeMux) *Router {
	if mux == nil {
		mux = http.NewServeMux()
	}
	return &Router{
		mux: mux,
	}
}

// Mux returns the underlying http.ServeMux
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// Use appends middleware to the chain.
func (r *Router) Use(mw ...Middleware) *Router {
	r.middlewares = append(r.middlewares, mw...)
	return r
}

// Handle registers a handler for the given pattern
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a handler function for the given pattern
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// Handler returns the mux wrapped in the middleware chain.
func (r *Router) Handler() http.Handler {
	var h http.Handler = r.mux
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h
}
