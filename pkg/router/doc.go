// Package router provides a request handler for the gato server with
// pattern matching, middleware support, and URL parameter extraction.
//
// The router supports the following patterns:
//   - Exact match: /users/list
//   - Named parameters: /users/:id
//   - Wildcard matching: /api/v1/*
//   - Nested parameters: /posts/:id/comments/:commentId
//
// A Router is safe for concurrent use, so one instance can be shared by
// every connection of a server.
//
// Example usage:
//
//	r := router.New()
//	r.GET("/users/:id", UserHandler)
//	r.GET("/posts/:id/comments/:commentId", CommentHandler)
//	r.GET("/static/*", router.Static("./public"))
//	srv := server.New(cfg, r, logger)
package router
