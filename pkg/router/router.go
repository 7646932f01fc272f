package router

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"gato/pkg/http"
)

// Route represents an HTTP route with its handler and metadata.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
	Params  []string
	Regex   *regexp.Regexp
}

// Router is a request handler that dispatches on method and path.
type Router struct {
	mu         sync.RWMutex
	routes     map[string][]Route
	middleware []Middleware
	notFound   http.Handler
	notAllowed http.Handler
	paramCache map[string]*regexp.Regexp
}

// paramPattern matches a ":name" segment of a route pattern.
var paramPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// New creates a new Router instance.
func New() *Router {
	return &Router{
		routes:   make(map[string][]Route),
		notFound: http.NotFoundHandler(),
		notAllowed: http.HandlerFunc(func(r *http.Request) *http.Response {
			return http.Error(http.StatusMethodNotAllowed)
		}),
		paramCache: make(map[string]*regexp.Regexp),
	}
}

// GET is a shortcut for adding a route with GET method.
func (r *Router) GET(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodGet, pattern, handler)
}

// POST is a shortcut for adding a route with POST method.
func (r *Router) POST(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodPost, pattern, handler)
}

// PUT is a shortcut for adding a route with PUT method.
func (r *Router) PUT(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodPut, pattern, handler)
}

// DELETE is a shortcut for adding a route with DELETE method.
func (r *Router) DELETE(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodDelete, pattern, handler)
}

// PATCH is a shortcut for adding a route with PATCH method.
func (r *Router) PATCH(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodPatch, pattern, handler)
}

// OPTIONS is a shortcut for adding a route with OPTIONS method.
func (r *Router) OPTIONS(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodOptions, pattern, handler)
}

// HEAD is a shortcut for adding a route with HEAD method.
func (r *Router) HEAD(pattern string, handler http.Handler) {
	r.AddRoute(http.MethodHead, pattern, handler)
}

// AddRoute adds a new route with the specified method and pattern.
func (r *Router) AddRoute(method, pattern string, handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	params, re := r.compilePattern(pattern)
	route := Route{
		Method:  method,
		Pattern: pattern,
		Handler: handler,
		Params:  params,
		Regex:   re,
	}
	r.routes[method] = append(r.routes[method], route)
}

// compilePattern converts a route pattern to a regex and extracts parameter
// names. Must be called with r.mu held.
func (r *Router) compilePattern(pattern string) ([]string, *regexp.Regexp) {
	var params []string
	for _, m := range paramPattern.FindAllStringSubmatch(pattern, -1) {
		params = append(params, m[1])
	}

	base, wildcard := strings.CutSuffix(pattern, "/*")
	expr := "^" + paramPattern.ReplaceAllString(regexp.QuoteMeta(base), `(?P<$1>[^/]+)`)
	if wildcard {
		expr += `(?P<` + WildcardParam + `>/.*)`
		params = append(params, WildcardParam)
	}
	expr += "$"

	// Use cached regex if available
	if re, ok := r.paramCache[expr]; ok {
		return params, re
	}

	re := regexp.MustCompile(expr)
	r.paramCache[expr] = re
	return params, re
}

// Handle implements http.Handler. Route parameters are stored in
// req.Params before the route handler runs.
func (r *Router) Handle(req *http.Request) *http.Response {
	r.mu.RLock()
	middleware := r.middleware
	handler, params, allowed := r.lookup(req.Method, req.Path())
	r.mu.RUnlock()

	if params != nil {
		req.Params = params
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	resp := handler.Handle(req)
	if len(allowed) > 0 {
		if resp = ensureHeader(resp); resp != nil {
			resp.Header.Set(http.HeaderAllow, strings.Join(allowed, ", "))
		}
	}
	return resp
}

// lookup finds the handler for method and path. When the path only
// matches under other methods, those methods are returned sorted along
// with the method-not-allowed handler. Must be called with r.mu held.
func (r *Router) lookup(method, path string) (http.Handler, Params, []string) {
	for _, route := range r.routes[method] {
		if params := matchRoute(path, route); params != nil {
			return route.Handler, params, nil
		}
	}

	var allowed []string
	for other, routes := range r.routes {
		if other == method {
			continue
		}
		for _, route := range routes {
			if matchRoute(path, route) != nil {
				allowed = append(allowed, other)
				break
			}
		}
	}
	if len(allowed) == 0 {
		return r.notFound, nil, nil
	}
	sort.Strings(allowed)
	return r.notAllowed, nil, allowed
}

// matchRoute checks if the URL path matches the route pattern.
func matchRoute(path string, route Route) Params {
	if route.Regex == nil {
		return nil
	}

	matches := route.Regex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}

	params := make(Params)
	for i, name := range route.Regex.SubexpNames() {
		if name != "" && i < len(matches) {
			params[name] = matches[i]
		}
	}

	return params
}

// Use adds a middleware to the router's global middleware chain.
func (r *Router) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middlewares...)
}

// SetNotFoundHandler sets the handler for routes that don't match.
func (r *Router) SetNotFoundHandler(handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

// SetMethodNotAllowedHandler sets the handler for paths that match under
// another method only.
func (r *Router) SetMethodNotAllowedHandler(handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notAllowed = handler
}

// Routes returns a copy of all registered routes.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []Route
	for _, methodRoutes := range r.routes {
		routes = append(routes, methodRoutes...)
	}
	return routes
}
