package http

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"sync"
)

// Method constants for HTTP requests.
const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodConnect = "CONNECT"
	MethodOptions = "OPTIONS"
	MethodTrace   = "TRACE"
	MethodPatch   = "PATCH"
)

// Protocol versions.
const (
	ProtocolHTTP10 = "HTTP/1.0"
	ProtocolHTTP11 = "HTTP/1.1"
)

// ServerName is sent in the Server header of every response.
const ServerName = "Gato Framework"

// TimeFormat is the time format used in HTTP date headers.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Header names used by the engine and its handlers.
const (
	HeaderAllow           = "Allow"
	HeaderAuthorization   = "Authorization"
	HeaderCacheControl    = "Cache-Control"
	HeaderContentLength   = "Content-Length"
	HeaderContentRange    = "Content-Range"
	HeaderContentType     = "Content-Type"
	HeaderETag            = "ETag"
	HeaderHost            = "Host"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderLastModified    = "Last-Modified"
	HeaderRange           = "Range"
	HeaderServer          = "Server"
	HeaderUserAgent       = "User-Agent"
	HeaderXRequestID      = "X-Request-ID"
)

// Wire delimiters.
const (
	crlf     = "\r\n"
	boundary = "\r\n\r\n"
)

// Parse errors. They are returned wrapped in a *ProtocolError.
var (
	ErrMissingBoundary      = errors.New("missing header/body boundary")
	ErrMissingLineBreak     = errors.New("missing line break after request line")
	ErrMalformedRequestLine = errors.New("malformed request line")
)

// Header maps a header name to its value. Names are kept exactly as they
// appear on the wire and a later occurrence of a name replaces an earlier
// one.
type Header map[string]string

// Get returns the value stored under key, or "" if absent.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[key]
}

// GetFold is like Get but matches key case-insensitively, for names that
// clients spell in varying case.
func (h Header) GetFold(key string) string {
	if v, ok := h[key]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Set stores value under key, replacing any existing value. Like any map
// write it panics on a nil Header.
func (h Header) Set(key, value string) {
	h[key] = value
}

// Del removes key.
func (h Header) Del(key string) {
	delete(h, key)
}

// Clone returns a copy of the header.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	clone := make(Header, len(h))
	for k, v := range h {
		clone[k] = v
	}
	return clone
}

// keys returns the header names in sorted order.
func (h Header) keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeTo appends the header lines to buf.
func (h Header) writeTo(buf *bytes.Buffer) {
	for _, k := range h.keys() {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(h[k])
		buf.WriteString(crlf)
	}
}

// ProtocolError represents an HTTP protocol error.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Message
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// bufferPool provides a pool of bytes.Buffer objects.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// getBuffer gets a buffer from the pool.
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer returns a buffer to the pool.
func putBuffer(b *bytes.Buffer) {
	b.Reset()
	bufferPool.Put(b)
}
