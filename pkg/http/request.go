package http

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"
)

// Request represents a parsed HTTP request.
type Request struct {
	Method string
	// Target is the request-target exactly as sent, e.g. "/users?id=1".
	Target string
	// Proto is the third token of the request line, "" when absent.
	Proto  string
	Header Header
	Body   []byte

	// RemoteAddr is set by the server. The parser leaves it empty.
	RemoteAddr string
	// Params holds route parameters filled in by a router.
	Params map[string]string
}

// ParseRequest splits a raw message into a Request.
//
// The message must contain the blank line separating headers from body.
// Everything after that blank line is the body. The header section must
// contain a line break after the request line, and the request line must
// carry at least a method and a target. A request line directly followed
// by the blank line, as in "GET / HTTP/1.0\r\n\r\n", therefore fails with
// ErrMissingLineBreak.
func ParseRequest(raw []byte) (*Request, error) {
	idx := bytes.Index(raw, []byte(boundary))
	if idx == -1 {
		return nil, &ProtocolError{Err: ErrMissingBoundary}
	}
	head := string(raw[:idx])
	body := raw[idx+len(boundary):]

	lineEnd := strings.Index(head, crlf)
	if lineEnd == -1 {
		return nil, &ProtocolError{Message: head, Err: ErrMissingLineBreak}
	}

	method, target, proto, err := ParseRequestLine(head[:lineEnd])
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method: method,
		Target: target,
		Proto:  proto,
		Header: parseHeaderLines(head[lineEnd+len(crlf):]),
		Body:   append([]byte(nil), body...),
	}
	return req, nil
}

// ParseRequestLine splits a request line on spaces.
// Returns method, target, and protocol; the protocol may be empty.
func ParseRequestLine(line string) (string, string, string, error) {
	var parts []string
	for _, p := range strings.Split(line, " ") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", "", &ProtocolError{Message: line, Err: ErrMalformedRequestLine}
	}
	proto := ""
	if len(parts) > 2 {
		proto = parts[2]
	}
	return parts[0], parts[1], proto, nil
}

// parseHeaderLines parses CRLF separated header lines. A line without a
// colon yields an empty value.
func parseHeaderLines(section string) Header {
	headers := make(Header)
	if section == "" {
		return headers
	}
	for _, line := range strings.Split(section, crlf) {
		if line == "" {
			continue
		}
		key, value := ParseHeaderLine(line)
		headers[key] = value
	}
	return headers
}

// ParseHeaderLine splits a header line at its first colon. The key is
// returned as is; spaces and tabs around the value are trimmed.
func ParseHeaderLine(line string) (string, string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return key, ""
	}
	return key, strings.Trim(value, " \t")
}

// Path returns the path component of the target.
func (r *Request) Path() string {
	path, _, _ := strings.Cut(r.Target, "?")
	return path
}

// Query returns the parsed query string of the target.
func (r *Request) Query() url.Values {
	_, query, found := strings.Cut(r.Target, "?")
	if !found {
		return make(url.Values)
	}
	return parseQuery(query)
}

// ContentLength returns the Content-Length header value, or -1 if not set
// or not a valid non-negative number.
func (r *Request) ContentLength() int64 {
	return contentLength(r.Header)
}

// UserAgent returns the User-Agent header value.
func (r *Request) UserAgent() string {
	return r.Header.Get(HeaderUserAgent)
}

// Param returns the named route parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

func contentLength(h Header) int64 {
	cl := strings.TrimSpace(h.GetFold(HeaderContentLength))
	if cl == "" {
		return -1
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// parseQuery parses URL query parameters.
func parseQuery(query string) url.Values {
	values := make(url.Values)
	if query == "" {
		return values
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			k = key
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			v = value
		}
		values.Add(k, v)
	}
	return values
}
