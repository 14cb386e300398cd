// Package middleware provides the gin middleware stack for the gateway:
// CORS, structured request logging, and prometheus instrumentation.
package middleware
