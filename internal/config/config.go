// Package config loads the engine's configuration (spec §6.4) from a YAML
// file with environment-variable overrides, the same two-layer load the
// teacher's apiserver config uses.
package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	env "github.com/qiangxue/go-env"
	"gopkg.in/yaml.v2"

	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

const envPrefix = "SMT_"

const (
	defaultMappingSource           = "classpath"
	defaultMappingLocation         = "mappings/topic-mappings.json"
	defaultHotReloadIntervalSecs   = 30
	defaultReloadRetryAttempts     = 3
	defaultReloadRetryBaseDelayMs  = 200
	defaultReloadRetryMaxDelayMs   = 5000
	defaultReloadProbeTimeoutSecs  = 5
	defaultReloadFetchTimeoutSecs  = 15
	defaultMetricsPort             = 8090
)

// Config is the engine's full configuration surface (spec §6.4).
type Config struct {
	// MappingSource selects "classpath" or "s3"; an "s3" value is also
	// implied when RemoteEndpoint is non-empty.
	MappingSource   string `yaml:"mapping_source" env:"MAPPING_SOURCE"`
	MappingLocation string `yaml:"mapping_location" env:"MAPPING_LOCATION"`

	RemoteEndpoint        string `yaml:"remote_endpoint" env:"REMOTE_ENDPOINT"`
	RemoteBucket          string `yaml:"remote_bucket" env:"REMOTE_BUCKET"`
	RemoteRegion          string `yaml:"remote_region" env:"REMOTE_REGION"`
	RemoteAccessKeyID     string `yaml:"remote_access_key_id" env:"REMOTE_ACCESS_KEY_ID" sensitive:"true"`
	RemoteSecretAccessKey string `yaml:"remote_secret_access_key" env:"REMOTE_SECRET_ACCESS_KEY" sensitive:"true"`
	RemoteUsePathStyle    bool   `yaml:"remote_use_path_style" env:"REMOTE_USE_PATH_STYLE"`

	HotReloadEnabled         bool `yaml:"hot_reload_enabled" env:"HOT_RELOAD_ENABLED"`
	HotReloadIntervalSeconds int  `yaml:"hot_reload_interval_seconds" env:"HOT_RELOAD_INTERVAL_SECONDS"`

	ReloadRetryAttempts    int `yaml:"reload_retry_attempts" env:"RELOAD_RETRY_ATTEMPTS"`
	ReloadRetryBaseDelayMs int `yaml:"reload_retry_base_delay_ms" env:"RELOAD_RETRY_BASE_DELAY_MS"`
	ReloadRetryMaxDelayMs  int `yaml:"reload_retry_max_delay_ms" env:"RELOAD_RETRY_MAX_DELAY_MS"`
	ReloadProbeTimeoutSecs int `yaml:"reload_probe_timeout_seconds" env:"RELOAD_PROBE_TIMEOUT_SECONDS"`
	ReloadFetchTimeoutSecs int `yaml:"reload_fetch_timeout_seconds" env:"RELOAD_FETCH_TIMEOUT_SECONDS"`

	FailOnMissingMapping bool `yaml:"fail_on_missing_mapping" env:"FAIL_ON_MISSING_MAPPING"`
	AttachSourceMetadata bool `yaml:"attach_source_metadata" env:"ATTACH_SOURCE_METADATA"`
	StoreRawPayload      bool `yaml:"store_raw_payload" env:"STORE_RAW_PAYLOAD"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
}

// Validate checks the invariants Load cannot express through defaults
// alone.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MappingSource, validation.In("classpath", "s3")),
		validation.Field(&c.MappingLocation, validation.Required),
		validation.Field(&c.HotReloadIntervalSeconds, validation.Min(1)),
		validation.Field(&c.ReloadRetryAttempts, validation.Min(1)),
		validation.Field(&c.RemoteBucket, validation.When(c.MappingSource == "s3", validation.Required)),
	)
}

// Load reads file (if non-empty) as YAML over a defaulted Config, then
// overlays environment variables prefixed with "SMT_", then validates.
func Load(file string, log logger.Logger) (*Config, error) {
	c := Config{
		MappingSource:            defaultMappingSource,
		MappingLocation:          defaultMappingLocation,
		HotReloadIntervalSeconds: defaultHotReloadIntervalSecs,
		ReloadRetryAttempts:      defaultReloadRetryAttempts,
		ReloadRetryBaseDelayMs:   defaultReloadRetryBaseDelayMs,
		ReloadRetryMaxDelayMs:    defaultReloadRetryMaxDelayMs,
		ReloadProbeTimeoutSecs:   defaultReloadProbeTimeoutSecs,
		ReloadFetchTimeoutSecs:   defaultReloadFetchTimeoutSecs,
		AttachSourceMetadata:     true,
		LogLevel:                 "info",
		MetricsPort:              defaultMetricsPort,
	}

	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config file: %w", err)
		}
	}

	if err := env.New(envPrefix, log.Infof).Load(&c); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	if c.RemoteEndpoint != "" || c.RemoteBucket != "" {
		c.MappingSource = "s3"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &c, nil
}
