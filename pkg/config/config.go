package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/ekaya-ingest/pkg/matcher"
	"github.com/ekaya-inc/ekaya-ingest/pkg/services"
)

// Registry sources.
const (
	RegistryBuiltin  = "builtin"
	RegistryFile     = "file"
	RegistryPostgres = "postgres"
)

// DefaultPath is the config file Load reads when present.
const DefaultPath = "config.yaml"

// Config holds all configuration for ekaya-ingest.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	Import   ImportConfig   `yaml:"import"`
	Matching MatchingConfig `yaml:"matching"`
	Registry RegistryConfig `yaml:"registry"`

	// Database is only used when Registry.Source is "postgres".
	Database DatabaseConfig `yaml:"database"`
}

// ImportConfig bounds the work done per preview request.
type ImportConfig struct {
	CSVMaxRows       int   `yaml:"csv_max_rows" env:"IMPORT_CSV_MAX_ROWS" env-default:"2000"`
	ExcelMaxRows     int   `yaml:"excel_max_rows" env:"IMPORT_EXCEL_MAX_ROWS" env-default:"5000"`
	SQLMaxSampleRows int   `yaml:"sql_max_sample_rows" env:"IMPORT_SQL_MAX_SAMPLE_ROWS" env-default:"50"`
	MaxUploadBytes   int64 `yaml:"max_upload_bytes" env:"IMPORT_MAX_UPLOAD_BYTES" env-default:"20971520"`
	// ScanInjection adds warnings for sample values that look like SQL injection payloads.
	ScanInjection bool `yaml:"scan_injection" env:"IMPORT_SCAN_INJECTION" env-default:"true"`
}

// MatchingConfig holds schema matcher thresholds.
type MatchingConfig struct {
	PerColumnCandidates     int     `yaml:"per_column_candidates" env:"MATCH_PER_COLUMN_CANDIDATES" env-default:"6"`
	MinCandidateScore       float64 `yaml:"min_candidate_score" env:"MATCH_MIN_CANDIDATE_SCORE" env-default:"0.22"`
	MinAcceptedMappingScore float64 `yaml:"min_accepted_mapping_score" env:"MATCH_MIN_ACCEPTED_MAPPING_SCORE" env-default:"0.55"`
}

// RegistryConfig selects where target tables come from.
type RegistryConfig struct {
	Source string `yaml:"source" env:"REGISTRY_SOURCE" env-default:"builtin"`
	// Path is the YAML registry file for the "file" source.
	Path string `yaml:"path" env:"REGISTRY_PATH" env-default:""`
	// SchemasStr is a comma-separated list of Postgres schemas to introspect.
	SchemasStr string `yaml:"schemas" env:"REGISTRY_SCHEMAS" env-default:"public"`

	// Schemas is the parsed list from SchemasStr (not from config file).
	Schemas []string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL connection settings for registry introspection.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"ekaya"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"crm"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. Without a config.yaml, only environment variables and defaults
// apply. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultPath, version)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.Registry.Schemas = splitList(cfg.Registry.SchemasStr)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.validateTLS(); err != nil {
		return err
	}

	if c.Import.CSVMaxRows <= 0 || c.Import.ExcelMaxRows <= 0 || c.Import.SQLMaxSampleRows <= 0 {
		return fmt.Errorf("import row limits must be positive")
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import.max_upload_bytes must be positive")
	}

	if c.Matching.PerColumnCandidates <= 0 {
		return fmt.Errorf("matching.per_column_candidates must be positive")
	}
	for name, v := range map[string]float64{
		"matching.min_candidate_score":        c.Matching.MinCandidateScore,
		"matching.min_accepted_mapping_score": c.Matching.MinAcceptedMappingScore,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}

	switch c.Registry.Source {
	case RegistryBuiltin:
	case RegistryFile:
		if c.Registry.Path == "" {
			return fmt.Errorf("registry.path is required when registry.source is %q", RegistryFile)
		}
	case RegistryPostgres:
		if len(c.Registry.Schemas) == 0 {
			return fmt.Errorf("registry.schemas must list at least one schema")
		}
	default:
		return fmt.Errorf("unknown registry.source %q", c.Registry.Source)
	}

	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// ImportOptions projects the import section onto the preview service limits.
func (c *Config) ImportOptions() services.ImportOptions {
	return services.ImportOptions{
		CSVMaxRows:       c.Import.CSVMaxRows,
		ExcelMaxRows:     c.Import.ExcelMaxRows,
		SQLMaxSampleRows: c.Import.SQLMaxSampleRows,
		ScanInjection:    c.Import.ScanInjection,
	}
}

// MatchOptions projects the matching section onto matcher options.
func (c *Config) MatchOptions() matcher.Options {
	return matcher.Options{
		PerColumnCandidates:     c.Matching.PerColumnCandidates,
		MinCandidateScore:       c.Matching.MinCandidateScore,
		MinAcceptedMappingScore: c.Matching.MinAcceptedMappingScore,
	}
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
