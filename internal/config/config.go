package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// token verification, the upstream domain list and refresh scheduling.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the level implied by Environment (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"1m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists the origins allowed by CORS; empty allows any origin
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," yaml:"allowedOrigins"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Enabled turns on refresh history, snapshots and the scheduled refresh job
		Enabled bool `env:"DATABASE_ENABLED" env-default:"false" yaml:"enabled"`
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"mailguard" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"4" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Auth configures how refresh callers are authenticated and authorized
	Auth struct {
		// PublicKey is the PEM encoded RSA key used to verify access tokens
		PublicKey string `env:"AUTH_PUBLIC_KEY" yaml:"publicKey"`
		// PublicKeyFile is read when PublicKey is empty
		PublicKeyFile string `env:"AUTH_PUBLIC_KEY_FILE" yaml:"publicKeyFile"`
		// Issuer is the expected "iss" claim; empty disables the check
		Issuer string `env:"AUTH_ISSUER" yaml:"issuer"`
		// Leeway tolerates clock skew when checking token times
		Leeway time.Duration `env:"AUTH_LEEWAY" env-default:"30s" yaml:"leeway"`
		// Realm is the only realm the endpoints are served for
		Realm string `env:"AUTH_REALM" env-default:"master" yaml:"realm"`
		// AdminClient is the client whose roles are inspected
		AdminClient string `env:"AUTH_ADMIN_CLIENT" env-default:"realm-management" yaml:"adminClient"`
		// AdminRole is the role required on AdminClient
		AdminRole string `env:"AUTH_ADMIN_ROLE" env-default:"realm-admin" yaml:"adminRole"`
		// ServiceAccountClients lists the client ids that are service accounts
		ServiceAccountClients []string `env:"AUTH_SERVICE_ACCOUNT_CLIENTS" env-separator:"," yaml:"serviceAccountClients"`
		// SessionCookie is the cookie carrying an interactive session token
		SessionCookie string `env:"AUTH_SESSION_COOKIE" env-default:"MAILGUARD_SESSION" yaml:"sessionCookie"`
	} `yaml:"auth"`

	// Source configures where the disposable domain list is fetched from
	Source struct {
		// URLs are merged into one list; every URL must be reachable for a refresh to succeed
		URLs []string `env:"SOURCE_URLS" env-separator:"," yaml:"urls"`
		// LocalFile is used when the URLs cannot be fetched
		LocalFile string `env:"SOURCE_LOCAL_FILE" yaml:"localFile"`
		// Format is the list format: text, json or auto
		Format string `env:"SOURCE_FORMAT" env-default:"auto" yaml:"format"`
		// Timeout bounds a single fetch of the whole list
		Timeout time.Duration `env:"SOURCE_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"source"`

	// Refresh configures when the list is refreshed without an admin request
	Refresh struct {
		// OnStartup populates the list before the server starts listening
		OnStartup bool `env:"REFRESH_ON_STARTUP" env-default:"true" yaml:"onStartup"`
		// StartupTimeout bounds the startup refresh
		StartupTimeout time.Duration `env:"REFRESH_STARTUP_TIMEOUT" env-default:"1m" yaml:"startupTimeout"`
		// Interval schedules a periodic refresh; zero disables it. Requires the database.
		Interval time.Duration `env:"REFRESH_INTERVAL" env-default:"24h" yaml:"interval"`
		// Workers is the number of refresh jobs processed concurrently
		Workers int `env:"REFRESH_WORKERS" env-default:"1" yaml:"workers"`
	} `yaml:"refresh"`

	// Validation configures the email check
	Validation struct {
		// MatchSubdomains makes a listed domain also reject its subdomains
		MatchSubdomains bool `env:"VALIDATION_MATCH_SUBDOMAINS" env-default:"false" yaml:"matchSubdomains"`
	} `yaml:"validation"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// An empty path reads the configuration from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if cfg.Auth.PublicKey == "" && cfg.Auth.PublicKeyFile != "" {
		b, err := os.ReadFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("could not read public key file: %w", err)
		}
		cfg.Auth.PublicKey = string(b)
	}

	return &cfg, nil
}
