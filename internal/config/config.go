// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	customValidation "github.com/allisson/devicesecret/internal/validation"
)

// Trust anchor kinds.
const (
	TrustAnchorSoftware = "software"
	TrustAnchorKeeper   = "keeper"
	TrustAnchorVault    = "vault"
)

// Store drivers.
const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverMySQL    = "mysql"
	StoreDriverRedis    = "redis"
	StoreDriverS3       = "s3"
)

// Config holds all application configuration.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// KeyAlias is the trust anchor alias of the master key.
	KeyAlias string
	// StoreNamespace is the key-value namespace holding the wrapped secret.
	StoreNamespace string

	// TrustAnchor selects where the master key lives ("software", "keeper", "vault").
	TrustAnchor string
	// KeeperURI is the gocloud.dev secrets URL sealing the master key (e.g., "awskms://...").
	KeeperURI string
	// VaultAddress is the Vault server address used by the "vault" trust anchor.
	VaultAddress string
	// VaultToken is the Vault token used by the "vault" trust anchor.
	VaultToken string
	// VaultTransitMount is the mount path of the Vault transit engine.
	VaultTransitMount string
	// VaultTimeout bounds every request to Vault.
	VaultTimeout time.Duration

	// StoreDriver selects the key-value store ("file", "memory", "postgres", "mysql", "redis", "s3").
	StoreDriver string
	// StorePath is the base directory of the "file" store.
	StorePath string

	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// RedisAddress is the host:port of the Redis server.
	RedisAddress string
	// RedisPassword is the Redis password, empty for none.
	RedisPassword string
	// RedisDB is the Redis logical database number.
	RedisDB int
	// RedisKeyPrefix is prepended to every Redis hash name.
	RedisKeyPrefix string

	// S3Bucket is the bucket of the "s3" store.
	S3Bucket string
	// S3Prefix is the object key prefix of the "s3" store.
	S3Prefix string
	// S3Region is the AWS region of the bucket.
	S3Region string
	// S3Endpoint overrides the S3 endpoint for S3-compatible servers (e.g., MinIO).
	S3Endpoint string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsTextfile is the Prometheus textfile written on shutdown when metrics are enabled.
	MetricsTextfile string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	installation := deviceDomain.DefaultInstallation()

	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Installation
		KeyAlias:       env.GetString("KEY_ALIAS", installation.Alias),
		StoreNamespace: env.GetString("STORE_NAMESPACE", installation.Namespace),

		// Trust anchor
		TrustAnchor:       env.GetString("TRUST_ANCHOR", TrustAnchorKeeper),
		KeeperURI:         env.GetString("KEEPER_URI", ""),
		VaultAddress:      env.GetString("VAULT_ADDRESS", "http://127.0.0.1:8200"),
		VaultToken:        env.GetString("VAULT_TOKEN", ""),
		VaultTransitMount: env.GetString("VAULT_TRANSIT_MOUNT", "transit"),
		VaultTimeout:      env.GetDuration("VAULT_TIMEOUT_SECONDS", 30, time.Second),

		// Key-value store
		StoreDriver: env.GetString("STORE_DRIVER", StoreDriverFile),
		StorePath:   env.GetString("STORE_PATH", "./data"),

		// Database configuration
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 5),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 2),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME_MINUTES", 5, time.Minute),

		// Redis
		RedisAddress:   env.GetString("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  env.GetString("REDIS_PASSWORD", ""),
		RedisDB:        env.GetInt("REDIS_DB", 0),
		RedisKeyPrefix: env.GetString("REDIS_KEY_PREFIX", "devicesecret:"),

		// S3
		S3Bucket:   env.GetString("S3_BUCKET", ""),
		S3Prefix:   env.GetString("S3_PREFIX", ""),
		S3Region:   env.GetString("S3_REGION", "us-east-1"),
		S3Endpoint: env.GetString("S3_ENDPOINT", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "devicesecret"),
		MetricsTextfile:  env.GetString("METRICS_TEXTFILE", ""),
	}
}

// Validate checks enum values and the settings required by the selected trust anchor
// and store driver. The software anchor loses its master key when the process exits,
// so it is only accepted with the memory store.
func (c *Config) Validate() error {
	isSoftware := c.TrustAnchor == TrustAnchorSoftware
	isKeeper := c.TrustAnchor == TrustAnchorKeeper
	isVault := c.TrustAnchor == TrustAnchorVault
	isSQL := c.StoreDriver == StoreDriverPostgres || c.StoreDriver == StoreDriverMySQL

	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.KeyAlias, validation.Required, customValidation.Identifier),
		validation.Field(&c.StoreNamespace, validation.Required, customValidation.Identifier),
		validation.Field(&c.TrustAnchor,
			validation.Required,
			validation.In(TrustAnchorSoftware, TrustAnchorKeeper, TrustAnchorVault),
		),
		validation.Field(&c.KeeperURI,
			validation.When(isKeeper, validation.Required, customValidation.NotBlank, customValidation.NoWhitespace),
		),
		validation.Field(&c.VaultAddress, validation.When(isVault, validation.Required, customValidation.NoWhitespace)),
		validation.Field(&c.VaultToken, validation.When(isVault, validation.Required, customValidation.NoWhitespace)),
		validation.Field(&c.VaultTransitMount, validation.When(isVault, validation.Required)),
		validation.Field(&c.StoreDriver,
			validation.Required,
			validation.In(
				StoreDriverFile,
				StoreDriverMemory,
				StoreDriverPostgres,
				StoreDriverMySQL,
				StoreDriverRedis,
				StoreDriverS3,
			),
			validation.When(
				isSoftware,
				validation.In(StoreDriverMemory).Error("must be memory when the trust anchor is software"),
			),
		),
		validation.Field(&c.StorePath, validation.When(c.StoreDriver == StoreDriverFile, validation.Required)),
		validation.Field(&c.DBConnectionString, validation.When(isSQL, validation.Required)),
		validation.Field(&c.RedisAddress, validation.When(c.StoreDriver == StoreDriverRedis, validation.Required)),
		validation.Field(&c.S3Bucket, validation.When(c.StoreDriver == StoreDriverS3, validation.Required)),
		validation.Field(&c.MetricsNamespace, validation.When(c.MetricsEnabled, validation.Required)),
		validation.Field(&c.MetricsTextfile, validation.When(c.MetricsEnabled, validation.Required)),
	)
	return customValidation.WrapValidationError(err)
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
