// Package middleware provides HTTP middleware for the Runpad backend.
//
// Middleware stack includes:
//   - CORS: cross-origin resource sharing with configurable origins
//   - RateLimit: per-IP token bucket rate limiting
//
// Rate limiting protects the run endpoint in particular: a client
// hammering "run" must not starve the engine pool for everyone else.
package middleware
