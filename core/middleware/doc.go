// Package middleware provides HTTP middleware components for the admin API's
// cross-cutting concerns. It offers type-safe, composable middleware that
// integrates with core/handler's generic Context interface.
//
// # Available Middleware
//
//   - BodyLimit: restricts request body size to prevent resource exhaustion
//   - ClientIP: extracts real client IP addresses from proxy headers
//   - CORS: handles Cross-Origin Resource Sharing headers and preflight requests
//   - Logging: logs HTTP request and response details with structured logging
//   - RequestID: generates unique request identifiers for tracing
//   - SecurityHeaders: sets security-focused HTTP response headers
//
// # Common Patterns
//
// All middleware follow consistent patterns:
//
//   - Generic functions with handler.Context type parameters
//   - Basic constructor functions (e.g., RequestID[C](), ClientIP[C]())
//   - Advanced WithConfig constructors for custom configuration
//   - Context helper functions for retrieving and storing values (e.g., GetClientIP())
//   - Optional skip conditions for excluding specific routes
//
// # Basic Usage
//
//	import "github.com/conduithq/conduit/core/middleware"
//
//	app.Use(middleware.RequestID[*YourContext]())
//	app.Use(middleware.ClientIP[*YourContext]())
//	app.Use(middleware.SecurityHeaders[*YourContext]())
//
//	func handler(ctx *YourContext) handler.Response {
//		if requestID, ok := middleware.GetRequestID(ctx); ok {
//			// use request id for logging
//		}
//		return response.JSON(map[string]any{"status": "ok"})
//	}
//
// # Advanced Configuration
//
//	app.Use(middleware.ClientIPWithConfig[*YourContext](middleware.ClientIPConfig{
//		StoreInContext: true,
//		StoreInHeader:  true,
//		HeaderName:     "X-Client-IP",
//		Skip: func(ctx handler.Context) bool {
//			return strings.HasPrefix(ctx.Request().URL.Path, "/api/health")
//		},
//	}))
package middleware
