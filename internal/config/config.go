// Package config provides configuration loading and management for vrsync.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mydv/vrsync/internal/filtering"
	"github.com/mydv/vrsync/internal/telemetry"
)

const (
	// StorageTypeDatabase keeps vehicles and registry records in PostgreSQL
	StorageTypeDatabase = "database"

	// StorageTypeMemory keeps everything in process memory
	StorageTypeMemory = "memory"
)

// EnvPrefix is the prefix of every environment variable read by vrsync
const EnvPrefix = "VRSYNC"

// Environment variables consulted for secrets
const (
	EnvRegistryAPIKey   = "VRSYNC_REGISTRY_API_KEY"
	EnvDatabasePassword = "VRSYNC_DATABASE_PASSWORD"
)

// Defaults applied to unset values
const (
	DefaultRegistryTimeout  = 10 * time.Second
	DefaultMaxAttempts      = 3
	DefaultBaseDelay        = time.Second
	DefaultThrottleDelay    = 5 * time.Second
	DefaultBatchSize        = 5
	DefaultRequestDelay     = 2 * time.Second
	DefaultBatchDelay       = 5 * time.Second
	DefaultRefreshThreshold = 7 * 24 * time.Hour
	DefaultSyncInterval     = 24 * time.Hour
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks; this also cleans the path.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Registry  RegistryConfig    `yaml:"registry"`
	Sync      SyncConfig        `yaml:"sync"`
	Storage   StorageConfig     `yaml:"storage"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
	Auth      *AuthConfig       `yaml:"auth,omitempty"`
}

// RegistryConfig configures the external vehicle registry client
type RegistryConfig struct {
	// Endpoint is the full lookup URL
	Endpoint string `yaml:"endpoint"`

	// APIKeyFile is the path to a file containing the registry API key.
	// When unset the key is read from VRSYNC_REGISTRY_API_KEY.
	APIKeyFile string `yaml:"apiKeyFile,omitempty"`

	// Timeout bounds a single attempt (e.g. "10s")
	Timeout string `yaml:"timeout,omitempty"`

	// MaxAttempts is the total number of calls allowed per lookup
	MaxAttempts int `yaml:"maxAttempts,omitempty"`

	// BaseDelay is the base of the exponential backoff after network failures
	BaseDelay string `yaml:"baseDelay,omitempty"`

	// ThrottleDelay is the base of the linear backoff after throttled responses
	ThrottleDelay string `yaml:"throttleDelay,omitempty"`

	UserAgent string `yaml:"userAgent,omitempty"`
}

// SyncConfig controls sweep sizing, pacing and scheduling
type SyncConfig struct {
	// Enabled turns the scheduled sweep on
	Enabled bool `yaml:"enabled"`

	// Interval is the time between scheduled sweeps
	Interval string `yaml:"interval,omitempty"`

	BatchSize        int    `yaml:"batchSize,omitempty"`
	RequestDelay     string `yaml:"requestDelay,omitempty"`
	BatchDelay       string `yaml:"batchDelay,omitempty"`
	RefreshThreshold string `yaml:"refreshThreshold,omitempty"`

	// Tenants limits which tenants all-tenant sweeps cover
	Tenants *TenantFilterConfig `yaml:"tenants,omitempty"`
}

// TenantFilterConfig holds glob patterns over tenant IDs. Exclude wins over
// include; no include patterns means every tenant.
type TenantFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// StorageConfig selects the storage backend
type StorageConfig struct {
	// Type is "database" (default) or "memory"
	Type string `yaml:"type,omitempty"`

	// SeedFile is a YAML list of vehicles loaded into the memory store
	SeedFile string `yaml:"seedFile,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// DynamicAuth replaces the static password with a short-lived token
	// fetched before every new connection
	DynamicAuth *DynamicAuthConfig `yaml:"dynamicAuth,omitempty"`
}

// DynamicAuthConfig selects a dynamic database authentication method
type DynamicAuthConfig struct {
	AWSRDSIAM *DynamicAuthAWSRDSIAM `yaml:"awsRdsIam,omitempty"`
}

// DynamicAuthAWSRDSIAM configures AWS RDS IAM authentication
type DynamicAuthAWSRDSIAM struct {
	// Region is the AWS region of the database, or "detect" to read it from
	// the instance metadata service
	Region string `yaml:"region"`
}

// readSecretFile reads a secret from path, trimming surrounding whitespace
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from VRSYNC_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		return readSecretFile(d.PasswordFile)
	}

	if envPassword := os.Getenv(EnvDatabasePassword); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", EnvDatabasePassword,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	return d.BuildConnectionStringWithAuth(password), nil
}

// BuildConnectionStringWithAuth builds a connection string carrying the given
// password, which may be empty or a dynamic auth token.
func (d *DatabaseConfig) BuildConnectionStringWithAuth(password string) string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)
}

// GetAPIKey resolves the registry credential: APIKeyFile content first,
// then VRSYNC_REGISTRY_API_KEY. A missing credential is an error.
func (r *RegistryConfig) GetAPIKey() (string, error) {
	if r.APIKeyFile != "" {
		key, err := readSecretFile(r.APIKeyFile)
		if err != nil {
			return "", err
		}
		if key == "" {
			return "", fmt.Errorf("registry API key file %s is empty", r.APIKeyFile)
		}
		return key, nil
	}

	if key := os.Getenv(EnvRegistryAPIKey); key != "" {
		return key, nil
	}

	return "", fmt.Errorf(
		"no registry API key configured: set registry.apiKeyFile or %s environment variable", EnvRegistryAPIKey,
	)
}

// GetTimeout returns the per-attempt timeout
func (r *RegistryConfig) GetTimeout() time.Duration {
	return durationOr(r.Timeout, DefaultRegistryTimeout)
}

// GetMaxAttempts returns the retry ceiling
func (r *RegistryConfig) GetMaxAttempts() int {
	if r.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return r.MaxAttempts
}

// GetBaseDelay returns the network backoff base
func (r *RegistryConfig) GetBaseDelay() time.Duration {
	return durationOr(r.BaseDelay, DefaultBaseDelay)
}

// GetThrottleDelay returns the throttling backoff base
func (r *RegistryConfig) GetThrottleDelay() time.Duration {
	return durationOr(r.ThrottleDelay, DefaultThrottleDelay)
}

// GetInterval returns the scheduled sweep interval
func (s *SyncConfig) GetInterval() time.Duration {
	return durationOr(s.Interval, DefaultSyncInterval)
}

// GetBatchSize returns the group size
func (s *SyncConfig) GetBatchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

// GetRequestDelay returns the pause between vehicles in a group
func (s *SyncConfig) GetRequestDelay() time.Duration {
	return durationOr(s.RequestDelay, DefaultRequestDelay)
}

// GetBatchDelay returns the pause between groups
func (s *SyncConfig) GetBatchDelay() time.Duration {
	return durationOr(s.BatchDelay, DefaultBatchDelay)
}

// GetRefreshThreshold returns the staleness threshold
func (s *SyncConfig) GetRefreshThreshold() time.Duration {
	return durationOr(s.RefreshThreshold, DefaultRefreshThreshold)
}

// GetType returns the storage type, defaulting to database
func (s *StorageConfig) GetType() string {
	if s.Type == "" {
		return StorageTypeDatabase
	}
	return s.Type
}

// durationOr parses value, returning def when it is empty. Values are
// validated on load so a parse failure here cannot happen for a loaded config.
func durationOr(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.Registry.validate(); err != nil {
		return err
	}
	if err := c.Sync.validate(); err != nil {
		return err
	}

	switch c.Storage.GetType() {
	case StorageTypeDatabase:
		if c.Database == nil {
			return fmt.Errorf("storage: database configuration is required when storage.type is %q", StorageTypeDatabase)
		}
		if c.Storage.SeedFile != "" {
			return fmt.Errorf("storage: seedFile is only supported with storage.type %q", StorageTypeMemory)
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("storage: type must be %q or %q, got %q", StorageTypeDatabase, StorageTypeMemory, c.Storage.Type)
	}

	if c.Database != nil && c.Database.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database: connMaxLifetime must be a valid duration: %w", err)
		}
	}
	if c.Database != nil && c.Database.DynamicAuth != nil {
		if c.Database.DynamicAuth.AWSRDSIAM == nil {
			return fmt.Errorf("database: dynamicAuth requires awsRdsIam")
		}
		if c.Database.PasswordFile != "" {
			return fmt.Errorf("database: passwordFile and dynamicAuth are mutually exclusive")
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	if err := c.Auth.validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	return nil
}

func (r *RegistryConfig) validate() error {
	if r.Endpoint == "" {
		return fmt.Errorf("registry: endpoint is required")
	}
	u, err := url.Parse(r.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("registry: endpoint must be an absolute http(s) URL, got %q", r.Endpoint)
	}
	if r.MaxAttempts < 0 {
		return fmt.Errorf("registry: maxAttempts must not be negative")
	}
	return validateDurations("registry", map[string]string{
		"timeout":       r.Timeout,
		"baseDelay":     r.BaseDelay,
		"throttleDelay": r.ThrottleDelay,
	})
}

func (s *SyncConfig) validate() error {
	if s.BatchSize < 0 {
		return fmt.Errorf("sync: batchSize must not be negative")
	}
	if s.Tenants != nil {
		if err := filtering.ValidatePatterns(s.Tenants.Include); err != nil {
			return fmt.Errorf("sync.tenants: %w", err)
		}
		if err := filtering.ValidatePatterns(s.Tenants.Exclude); err != nil {
			return fmt.Errorf("sync.tenants: %w", err)
		}
	}
	return validateDurations("sync", map[string]string{
		"interval":         s.Interval,
		"requestDelay":     s.RequestDelay,
		"batchDelay":       s.BatchDelay,
		"refreshThreshold": s.RefreshThreshold,
	})
}

// validateDurations checks that every non-empty value parses as a
// non-negative duration
func validateDurations(section string, values map[string]string) error {
	for name, value := range values {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %s must be a valid duration (e.g., '5s', '1h'): %w", section, name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: %s must not be negative", section, name)
		}
	}
	return nil
}
