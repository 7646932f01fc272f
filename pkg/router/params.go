package router

import "gato/pkg/http"

// WildcardParam is the parameter holding the path matched by a trailing
// "/*" in a pattern.
const WildcardParam = "wildcard"

// Params holds URL parameter values extracted from the route pattern.
type Params map[string]string

// Get returns the value of the parameter with the given key.
// Returns an empty string if the parameter doesn't exist.
func (p Params) Get(key string) string {
	return p[key]
}

// Has returns true if the parameter with the given key exists.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Param returns the named route parameter of a routed request.
func Param(req *http.Request, name string) string {
	return req.Params[name]
}
