package main

import "time"

// AppConfig is the process's top-level configuration, read from the
// environment per spec.md's external-interface table plus a handful of
// additions this expansion's domain-stack wiring needs (storage backend
// selection, sandbox timeout, buffer sizes).
type AppConfig struct {
	BindAddress         string `env:"BIND_ADDRESS" envDefault:"127.0.0.1"`
	Port                int    `env:"PORT" envDefault:"3001"`
	DatabaseURL         string `env:"DATABASE_URL" envDefault:"file:conduit.db"`
	APIKey              string `env:"API_KEY" envDefault:"dev-key-change-in-production-32chars"`
	Environment         string `env:"RUST_ENV" envDefault:"development"`
	ListenerBindAddress string `env:"LISTENER_BIND_ADDRESS" envDefault:"0.0.0.0"`
	TLSCertPath         string `env:"TLS_CERT_PATH" envDefault:""`
	TLSKeyPath          string `env:"TLS_KEY_PATH" envDefault:""`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	StorageDir     string `env:"STORAGE_DIR" envDefault:"./data/storage"`
	S3Bucket       string `env:"S3_BUCKET" envDefault:""`
	S3Region       string `env:"S3_REGION" envDefault:""`
	S3Endpoint     string `env:"S3_ENDPOINT" envDefault:""`
	S3ForcePath    bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`

	SandboxTimeout    time.Duration `env:"SANDBOX_TIMEOUT" envDefault:"5s"`
	LogBufferCapacity int           `env:"LOG_BUFFER_CAPACITY" envDefault:"100"`
	MetricsBufferSize int           `env:"METRICS_BUFFER_SIZE" envDefault:"16"`
	DedupTTL          time.Duration `env:"DEDUP_TTL" envDefault:"24h"`
}

// isProduction reports whether the process is configured for RUST_ENV=production.
func (c AppConfig) isProduction() bool {
	return c.Environment == "production"
}
