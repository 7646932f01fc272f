package router

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"gato/pkg/http"
)

// Middleware is a function that wraps an http.Handler to add additional
// processing before or after the handler is called.
type Middleware func(http.Handler) http.Handler

// LoggingMiddleware returns a middleware that logs every routed request
// with its status and the time the handler took.
func LoggingMiddleware(log logrus.FieldLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(r *http.Request) *http.Response {
			start := time.Now()
			resp := next.Handle(r)
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"target":   r.Target,
				"status":   status,
				"duration": time.Since(start),
			}).Debug("request handled")
			return resp
		})
	}
}

// RecoveryMiddleware returns a middleware that turns a panic in the
// wrapped handler into a 500 response.
func RecoveryMiddleware(log logrus.FieldLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(r *http.Request) (resp *http.Response) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithField("panic", fmt.Sprint(rec)).Error("panic recovered")
					resp = http.Error(http.StatusInternalServerError)
				}
			}()
			return next.Handle(r)
		})
	}
}

// AuthMiddleware returns a middleware that rejects requests whose
// Authorization header or token query parameter differs from authToken.
func AuthMiddleware(authToken string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(r *http.Request) *http.Response {
			token := r.Header.GetFold(http.HeaderAuthorization)
			if token == "" {
				token = r.Query().Get("token")
			}
			if token != authToken {
				return http.Error(http.StatusUnauthorized)
			}
			return next.Handle(r)
		})
	}
}

// CORSMiddleware returns a middleware that adds CORS headers and answers
// preflight OPTIONS requests itself.
func CORSMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(r *http.Request) *http.Response {
			var resp *http.Response
			if r.Method == http.MethodOptions {
				resp = http.NewResponse(http.StatusNoContent, nil)
			} else {
				resp = ensureHeader(next.Handle(r))
			}
			if resp == nil {
				return nil
			}
			resp.Header.Set("Access-Control-Allow-Origin", "*")
			resp.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			resp.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			return resp
		})
	}
}

// RequestIDMiddleware returns a middleware that echoes the client's
// X-Request-ID, or a generated one, on the response.
func RequestIDMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(r *http.Request) *http.Response {
			requestID := r.Header.GetFold(http.HeaderXRequestID)
			if requestID == "" {
				requestID = generateRequestID()
			}
			resp := ensureHeader(next.Handle(r))
			if resp != nil {
				resp.Header.Set(http.HeaderXRequestID, requestID)
			}
			return resp
		})
	}
}

var requestSeq atomic.Uint64

// generateRequestID generates a request ID that is unique within the
// process.
func generateRequestID() string {
	return time.Now().Format("20060102150405.000000") + "-" + strconv.FormatUint(requestSeq.Add(1), 10)
}

// ensureHeader gives a handler-built response a header map to write to.
func ensureHeader(resp *http.Response) *http.Response {
	if resp != nil && resp.Header == nil {
		resp.Header = make(http.Header)
	}
	return resp
}

// Chain chains multiple middlewares together.
// The middlewares are applied in the order they are passed.
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
