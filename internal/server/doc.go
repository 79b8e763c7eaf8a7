// Package server provides HTTP routing, middleware, and the server lifecycle for the web viewer.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally. Methods are folded into mux patterns
// ("GET /pages/{slug}/grid"), so wildcard segments are available through [http.Request.PathValue].
//
// # Middleware
//
//   - [RequestID] tags each request with an X-Request-ID
//   - [Logging] writes one structured log line per request
//   - [Recover] converts handler panics into 500 responses
//
// # Lifecycle
//
// [Server] wraps [http.Server]. [Server.Run] blocks until its context is canceled and then drains
// in-flight requests with a bounded [http.Server.Shutdown].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
