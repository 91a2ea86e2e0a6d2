// Package config loads transcraftd's runtime configuration from a YAML
// file with environment-variable overrides, the same two-layer scheme
// loqa-core uses for its own runtime config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

// JobStoreConfig controls the SQLite-backed job ledger.
type JobStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"` // ephemeral|session|persistent
	RetentionDays int    `yaml:"retention_days"`
	MaxJobs       int    `yaml:"max_jobs"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

// PresetsConfig names caption segmentation presets; Load rejects any
// unknown name. The daemon does not read this list: every submitted job
// is rendered with both the broadcast and the social preset.
type PresetsConfig struct {
	Caption []string `yaml:"caption"` // e.g. ["broadcast", "social"]
}

// KineticConfig mirrors internal/kinetic.Config so it can be overridden
// from the config file without the ambient layer importing zero-valued
// domain defaults directly.
type KineticConfig struct {
	MaxBucketSize   int     `yaml:"max_bucket_size"`
	MaxHoldS        float64 `yaml:"max_hold_s"`
	FinalHoldS      float64 `yaml:"final_hold_s"`
	MinWordDisplayS float64 `yaml:"min_word_display_s"`
}

type Config struct {
	RuntimeName string          `yaml:"runtime_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	JobStore    JobStoreConfig  `yaml:"job_store"`
	Presets     PresetsConfig   `yaml:"presets"`
	Kinetic     KineticConfig   `yaml:"kinetic"`
}

func Default() Config {
	return Config{
		RuntimeName: "transcraftd",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		JobStore: JobStoreConfig{
			Path:          "./data/transcraft-jobs.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxJobs:       10000,
		},
		Presets: PresetsConfig{
			Caption: []string{"broadcast", "social"},
		},
		Kinetic: KineticConfig{
			MaxBucketSize:   3,
			MaxHoldS:        3.0,
			FinalHoldS:      1.5,
			MinWordDisplayS: 0.15,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "TRANSCRAFT_RUNTIME_NAME")
	overrideString(&cfg.Environment, "TRANSCRAFT_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "TRANSCRAFT_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "TRANSCRAFT_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "TRANSCRAFT_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "TRANSCRAFT_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "TRANSCRAFT_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "TRANSCRAFT_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "TRANSCRAFT_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "TRANSCRAFT_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "TRANSCRAFT_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "TRANSCRAFT_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "TRANSCRAFT_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "TRANSCRAFT_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "TRANSCRAFT_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "TRANSCRAFT_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.JobStore.Path, "TRANSCRAFT_JOB_STORE_PATH")
	overrideString(&cfg.JobStore.RetentionMode, "TRANSCRAFT_JOB_STORE_RETENTION_MODE")
	overrideInt(&cfg.JobStore.RetentionDays, "TRANSCRAFT_JOB_STORE_RETENTION_DAYS")
	overrideInt(&cfg.JobStore.MaxJobs, "TRANSCRAFT_JOB_STORE_MAX_JOBS")
	overrideBool(&cfg.JobStore.VacuumOnStart, "TRANSCRAFT_JOB_STORE_VACUUM_ON_START")
	overrideStringSlice(&cfg.Presets.Caption, "TRANSCRAFT_PRESETS_CAPTION")
	overrideInt(&cfg.Kinetic.MaxBucketSize, "TRANSCRAFT_KINETIC_MAX_BUCKET_SIZE")
	overrideFloat(&cfg.Kinetic.MaxHoldS, "TRANSCRAFT_KINETIC_MAX_HOLD_S")
	overrideFloat(&cfg.Kinetic.FinalHoldS, "TRANSCRAFT_KINETIC_FINAL_HOLD_S")
	overrideFloat(&cfg.Kinetic.MinWordDisplayS, "TRANSCRAFT_KINETIC_MIN_WORD_DISPLAY_S")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else if len(cfg.Bus.Servers) == 0 {
		return errors.New("bus.servers must not be empty when embedded mode is disabled")
	}
	if cfg.JobStore.Path == "" {
		return errors.New("job_store.path must not be empty")
	}
	switch cfg.JobStore.RetentionMode {
	case "ephemeral", "session", "persistent":
	default:
		return errors.New("job_store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.JobStore.RetentionDays < 0 {
		return errors.New("job_store.retention_days must be >= 0")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	if len(cfg.Presets.Caption) == 0 {
		return errors.New("presets.caption must list at least one preset")
	}
	for _, name := range cfg.Presets.Caption {
		switch name {
		case "broadcast", "social":
		default:
			return fmt.Errorf("presets.caption: unknown preset %q", name)
		}
	}
	if cfg.Kinetic.MaxBucketSize <= 0 {
		return errors.New("kinetic.max_bucket_size must be positive")
	}
	return nil
}
