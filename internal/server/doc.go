// Package server provides HTTP routing, middleware, and endpoint handlers for the playlist search service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//   - GET /genres : the cached genre taxonomy, sorted
//   - POST /search/playlists : multi-genre playlist search
//   - GET /health : process liveness
//
// # Error Envelope
//
// Every failed request returns the same JSON shape: an error code, a fixed
// user-facing message, and an optional details field with the underlying
// error. Details are suppressed when the server runs in production mode so
// upstream internals never leak to clients.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
