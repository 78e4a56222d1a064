// Package config loads run configuration from an optional YAML file and
// MMRRC_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MMRRC_"

// Publish drivers.
const (
	PublishNone     = ""
	PublishSQLite   = "sqlite"
	PublishPostgres = "postgres"
)

// Config is the complete run configuration.
type Config struct {
	Blob    BlobConfig    `yaml:"blob"`
	Input   InputConfig   `yaml:"input"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Publish PublishConfig `yaml:"publish"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// BlobConfig selects where output files are written.
type BlobConfig struct {
	// Driver is fs, s3 or memory.
	Driver string `yaml:"driver"`
	// FSRoot is the output directory for the fs driver.
	FSRoot string `yaml:"fs_root"`
	// Prefix scopes keys for the s3 and memory drivers.
	Prefix string        `yaml:"prefix"`
	S3     blob.S3Config `yaml:"s3"`
}

// InputConfig describes the raw catalog file.
type InputConfig struct {
	// Delimiter is "comma", "tab", a literal single character, or empty to sniff.
	Delimiter string `yaml:"delimiter"`
}

// IngestConfig tunes the record transforms.
type IngestConfig struct {
	// RowLimit stops each transform after this many input rows. Zero means no limit.
	RowLimit int `yaml:"row_limit"`
}

// PublishConfig optionally loads the normalized tables into a database.
type PublishConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Blob: BlobConfig{Driver: string(blob.DriverFilesystem), FSRoot: "output"},
		Log:  LogConfig{Level: "info"},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from MMRRC_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("BLOB_DRIVER", &c.Blob.Driver)
	str("BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("BLOB_PREFIX", &c.Blob.Prefix)
	str("BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("BLOB_S3_REGION", &c.Blob.S3.Region)
	str("BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	str("BLOB_S3_ACCESS_KEY_ID", &c.Blob.S3.AccessKeyID)
	str("BLOB_S3_SECRET_ACCESS_KEY", &c.Blob.S3.SecretAccessKey)
	str("DELIMITER", &c.Input.Delimiter)
	str("LOG_LEVEL", &c.Log.Level)
	str("METRICS_TEXTFILE", &c.Metrics.Textfile)
	str("PUBLISH_DRIVER", &c.Publish.Driver)
	str("PUBLISH_DSN", &c.Publish.DSN)

	if v, ok := lookup(EnvPrefix + "BLOB_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sBLOB_S3_PATH_STYLE: %w", EnvPrefix, err)
		}
		c.Blob.S3.PathStyle = b
	}
	if v, ok := lookup(EnvPrefix + "ROW_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sROW_LIMIT: %w", EnvPrefix, err)
		}
		c.Ingest.RowLimit = n
	}
	return nil
}

// Validate rejects unknown drivers and malformed values.
func (c *Config) Validate() error {
	switch blob.Driver(c.Blob.Driver) {
	case "", blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return errors.New("blob.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	switch c.Publish.Driver {
	case PublishNone, PublishSQLite, PublishPostgres:
	default:
		return fmt.Errorf("unknown publish driver %q", c.Publish.Driver)
	}
	if c.Ingest.RowLimit < 0 {
		return fmt.Errorf("ingest.row_limit must not be negative, got %d", c.Ingest.RowLimit)
	}
	if _, err := c.Delimiter(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Delimiter resolves the configured input delimiter. Zero means sniff.
func (c *Config) Delimiter() (rune, error) {
	switch strings.ToLower(c.Input.Delimiter) {
	case "":
		return 0, nil
	case "comma", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r := []rune(c.Input.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\n' || r[0] == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q", c.Input.Delimiter)
	}
	return r[0], nil
}

// BlobStore converts the blob section into the facade's Config.
func (c *Config) BlobStore() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		Prefix: c.Blob.Prefix,
		S3:     c.Blob.S3,
	}
}
