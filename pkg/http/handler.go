package http

// Handler maps a parsed request to a response.
//
// A single Handler is shared by every connection of a server, so Handle is
// called from many goroutines at once and must be safe for that. It must
// always return a response; a failure inside the handler is reported as an
// error status rather than a nil response or a panic.
type Handler interface {
	Handle(*Request) *Response
}

// HandlerFunc is a function that implements Handler.
type HandlerFunc func(*Request) *Response

// Handle calls f(r).
func (f HandlerFunc) Handle(r *Request) *Response {
	return f(r)
}

// NotFound returns a 404 Not Found response.
func NotFound(r *Request) *Response {
	return Text(StatusNotFound, "404 page not found")
}

// NotFoundHandler returns a handler that answers every request with 404.
func NotFoundHandler() Handler {
	return HandlerFunc(NotFound)
}
