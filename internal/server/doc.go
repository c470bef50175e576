// Package server provides HTTP routing, middleware, and the badge endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Badge Endpoint
//
// [BadgeHandler] serves the single public endpoint. Every aspect of the badge
// is controlled through query parameters (uid, theme, colors, redirect,
// show_offline, interchange); the request path carries no meaning. The
// handler maps selection outcomes to terminal responses: missing uid to 400,
// invalid or unknown tokens to 401, a redirect request with a resolved track
// to 302, and everything else to a 200 SVG.
//
// # Server
//
// [Server] wraps [http.Server] with context-driven graceful shutdown for use
// from the serve command.
package server
