// Package server provides HTTP server lifecycle management with graceful
// shutdown, configurable timeouts and header limits, and TLS configuration
// helpers. It wraps the standard http.Server.
//
// # Features
//
//   - Graceful shutdown with a configurable timeout (30s by default)
//   - Read, write and idle timeouts and a request header size limit
//   - TLS through a caller-supplied *tls.Config, with preset configurations
//     and a functional builder (NewTLSConfig)
//   - Construction from an environment-tagged Config (NewFromConfig)
//   - An errgroup-compatible Run for coordinated lifecycles
//
// The package has no middleware, health-check, signal-handling or
// request-logging support of its own; the handler passed to Start carries
// whatever the application needs.
//
// # Basic Usage
//
//	import "github.com/conduithq/conduit/core/server"
//
//	srv := server.New(":8080",
//		server.WithReadTimeout(30*time.Second),
//		server.WithShutdownTimeout(10*time.Second),
//		server.WithLogger(logger),
//	)
//
//	// Start blocks until ctx is cancelled or the listener fails.
//	if err := srv.Start(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
//		log.Fatal("server failed: ", err)
//	}
//
// Start returns ctx.Err() once the context is cancelled; it does not stop
// the listener itself. Stop shuts the server down gracefully; Run does both.
//
// # Server Configuration
//
// Timeouts and limits default to the Default* constants (15s read, 15s
// write, 60s idle, 1 MB of headers). NewFromConfig builds a Server from a
// Config and loads a certificate pair when TLSCertFile and TLSKeyFile are
// both set; options passed after the Config override its values:
//
//	cfg := server.DefaultConfig()
//	cfg.Addr = "0.0.0.0:8080"
//	cfg.IdleTimeout = 120 * time.Second
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # TLS Configuration
//
// WithTLS takes a *tls.Config; when one is set, Start serves HTTPS with the
// certificates it holds:
//
//	tlsConfig, err := server.NewTLSConfig(
//		server.WithTLSCertificate("cert.pem", "key.pem"),
//		server.WithTLSMinVersion(tls.VersionTLS12),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	srv := server.New(":8443", server.WithTLS(tlsConfig))
//
// NewTLSConfig starts from DefaultTLSConfig. ModernTLSConfig,
// IntermediateTLSConfig and StrictTLSConfig are alternative presets.
//
// # Graceful Shutdown
//
// Run returns a func() error for errgroup. It starts the server and, when
// ctx is cancelled, calls Stop and returns nil. Stop waits up to the
// shutdown timeout for in-flight requests:
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, router))
//	if err := g.Wait(); err != nil {
//		log.Fatal("server failed: ", err)
//	}
//
// # Best Practices
//
//   - Set appropriate timeouts for your use case
//   - Use TLS for production deployments
//   - Implement proper graceful shutdown
//   - Add health check endpoints for monitoring
//   - Use middleware for cross-cutting concerns
//   - Configure limits to prevent resource exhaustion
//   - Log server events for debugging and monitoring
//   - Handle signals for clean shutdown
//   - Test server configuration under load
//   - Monitor server metrics in production
package server
