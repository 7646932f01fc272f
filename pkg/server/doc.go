// Package server provides the gato connection engine: a TCP listener that
// serves one HTTP/1.1 request per connection.
//
// Every accepted connection runs on its own goroutine through the states
// accepted, reading, parsed, dispatched, responded and closed. The
// connection is always closed after the response; a malformed request is
// answered with 400 and only affects its own connection.
//
// The server supports:
//   - Configuration from the environment (PORT, default 3333)
//   - An optional cap on concurrently served connections
//   - Short-read or Content-Length message framing
//   - Graceful shutdown with context cancellation
//   - Structured logging through logrus
//
// Example usage:
//
//	cfg, _ := server.ConfigFromEnv()
//	srv := server.New(cfg, handler, logger)
//	go srv.ListenAndServe()
//	srv.Shutdown(ctx)
package server
