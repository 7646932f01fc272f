package http

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
)

// Response represents an HTTP response returned by a Handler.
type Response struct {
	StatusCode int
	Header     Header
	Body       []byte
}

// NewResponse creates a new HTTP response.
func NewResponse(statusCode int, body []byte) *Response {
	return &Response{
		StatusCode: statusCode,
		Header:     make(Header),
		Body:       body,
	}
}

// Text creates a plain text response.
func Text(statusCode int, text string) *Response {
	resp := NewResponse(statusCode, []byte(text))
	resp.Header.Set(HeaderContentType, "text/plain; charset=utf-8")
	return resp
}

// JSON creates a JSON response from v. If v cannot be encoded the result
// is a 500 response.
func JSON(statusCode int, v interface{}) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		return Error(StatusInternalServerError)
	}
	resp := NewResponse(statusCode, data)
	resp.Header.Set(HeaderContentType, "application/json")
	return resp
}

// Error creates a text response whose body is the reason phrase of code.
func Error(statusCode int) *Response {
	return Text(statusCode, StatusText(statusCode))
}

// WriteTo writes the response to w in a single write.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	r.appendTo(buf)
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Bytes returns the wire form of the response.
func (r *Response) Bytes() []byte {
	buf := getBuffer()
	defer putBuffer(buf)
	r.appendTo(buf)
	return append([]byte(nil), buf.Bytes()...)
}

// appendTo renders the status line, the Server header, the response
// headers in key order, a blank line, then the body. No Content-Length is
// added: the client reads the body until the connection closes.
func (r *Response) appendTo(buf *bytes.Buffer) {
	buf.WriteString(ProtocolHTTP11 + " ")
	buf.WriteString(strconv.Itoa(r.StatusCode))
	buf.WriteString(" ")
	buf.WriteString(StatusText(r.StatusCode))
	buf.WriteString(crlf)
	buf.WriteString(HeaderServer + ": " + ServerName + crlf)
	r.Header.writeTo(buf)
	buf.WriteString(crlf)
	buf.Write(r.Body)
}
