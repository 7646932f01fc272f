package main

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"gato/pkg/http"
	"gato/pkg/router"
	"gato/pkg/server"
)

// newRouter registers the demo routes.
func newRouter(cfg server.Config, log logrus.FieldLogger) *router.Router {
	r := router.New()

	r.Use(router.RecoveryMiddleware(log))
	r.Use(router.LoggingMiddleware(log))
	r.Use(router.RequestIDMiddleware())

	r.GET("/", IndexHandler())
	r.GET("/health", HealthHandler())
	r.POST("/echo", EchoHandler())
	r.GET("/status/:code", StatusHandler())

	if cfg.StaticDir != "" {
		r.GET("/static/*", router.Static(cfg.StaticDir))
		r.HEAD("/static/*", router.Static(cfg.StaticDir))
		log.WithField("dir", cfg.StaticDir).Info("serving static files")
	}

	return r
}

// IndexHandler greets the client.
func IndexHandler() http.Handler {
	return http.HandlerFunc(func(r *http.Request) *http.Response {
		return http.Text(http.StatusOK, "Hello from "+http.ServerName)
	})
}

// HealthHandler reports that the server is accepting requests.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(r *http.Request) *http.Response {
		return http.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// EchoHandler returns the request body with the request's content type.
func EchoHandler() http.Handler {
	return http.HandlerFunc(func(r *http.Request) *http.Response {
		resp := http.NewResponse(http.StatusOK, r.Body)
		ct := r.Header.GetFold(http.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}
		resp.Header.Set(http.HeaderContentType, ct)
		return resp
	})
}

// StatusHandler answers with the status code named in the path, whose
// body is that code's reason phrase.
func StatusHandler() http.Handler {
	return http.HandlerFunc(func(r *http.Request) *http.Response {
		code, err := strconv.Atoi(router.Param(r, "code"))
		if err != nil || code < 100 || code > 999 {
			return http.Error(http.StatusBadRequest)
		}
		return http.Error(code)
	})
}
