/*
Package http implements the HTTP/1.1 wire handling of the gato connection
engine.

It covers one request and one response per connection:

  - reading a raw message off a connection (short-read or Content-Length framing)
  - parsing the request line, headers and body
  - the Handler contract the engine dispatches to
  - serializing a response with its status line and reason phrase

There is no keep-alive, chunked transfer encoding or pipelining. The client
learns the end of the response body from the connection being closed.

# Usage

Parsing a buffered message:

	raw, err := http.ReadMessage(conn, http.ReadOptions{})
	req, err := http.ParseRequest(raw)

Serializing a response:

	resp := http.Text(http.StatusOK, "hello")
	resp.WriteTo(conn)
*/
package http
