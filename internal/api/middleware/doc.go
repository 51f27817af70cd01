// Package middleware provides production-ready HTTP middleware for the
// module server.
//
// Middleware stack includes:
//   - Recovery: Panic recovery with a JSON 500 and a zap log entry
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - Grants: Permissions attached to every request for gated modules
//   - TokenGrants: Extra permissions for requests bearing a token that
//     matches a bcrypt hash
//
// CORS Configuration:
//   - AllowOrigins: Permitted origin domains
//   - AllowMethods: HTTP methods (GET, HEAD, OPTIONS)
//   - AllowHeaders: Request headers, including If-None-Match
//   - ExposeHeaders: ETag and trace headers readable by browsers
//   - MaxAge: Preflight cache duration
//
// Rate Limiting:
//   - Per-IP tracking with idle client cleanup
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	limit, err := middleware.RateLimit(middleware.DefaultRateLimitConfig())
//	router.Use(limit)
//	router.Use(middleware.Grants(cfg.Modules.PublicPermissions...))
package middleware
