package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"chorddht/internal/logger"

	"gopkg.in/yaml.v3"
)

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

// MaintenanceConfig controls the fixed-order background maintenance
// loop and the startup join-retry loop.
type MaintenanceConfig struct {
	Interval          time.Duration `yaml:"interval"`
	JoinRetryInterval time.Duration `yaml:"joinRetryInterval"`
	MaxJoinRetries    int           `yaml:"maxJoinRetries"`
	RequestTimeout    time.Duration `yaml:"requestTimeout"`
}

// RingConfig describes ring-wide parameters: replication factor and
// the maintenance cadence.
type RingConfig struct {
	SuccessorListSize int               `yaml:"successorListSize"`
	Maintenance       MaintenanceConfig `yaml:"maintenance"`
}

type Route53Config struct {
	HostedZoneID string `yaml:"hostedZoneId"`
	DomainSuffix string `yaml:"domainSuffix"`
	TTL          int64  `yaml:"ttl"`
}

type BootstrapConfig struct {
	Mode    string        `yaml:"mode"` // "static" | "route53" | "init"
	Peers   []string      `yaml:"peers"`
	Route53 Route53Config `yaml:"route53"`
}

type NodeConfig struct {
	Id   string `yaml:"id"`
	Mode string `yaml:"mode"` // "public" | "private", used to auto-pick an advertised address
	Bind string `yaml:"bind"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	Ring      RingConfig      `yaml:"ring"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Node      NodeConfig      `yaml:"node"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoadConfig reads and parses the YAML configuration file at path.
// It performs only syntactic parsing; call ValidateConfig afterward.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides layers environment-variable overrides on top of
// the values loaded from the YAML file. Supported variables:
//
//	NODE_ID, NODE_MODE, NODE_BIND, NODE_HOST, NODE_PORT
//	BOOTSTRAP_MODE, BOOTSTRAP_PEERS
//	ROUTE53_ZONE_ID, ROUTE53_SUFFIX, ROUTE53_TTL
//	RING_SUCCESSOR_LIST_SIZE, RING_MAINTENANCE_INTERVAL
//	TRACE_ENABLED, TRACE_EXPORTER, TRACE_ENDPOINT
//	LOGGER_ENABLED, LOGGER_LEVEL, LOGGER_ENCODING, LOGGER_MODE, LOGGER_FILE_PATH
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NODE_ID"); v != "" {
		cfg.Node.Id = v
	}
	if v := os.Getenv("NODE_MODE"); v != "" {
		cfg.Node.Mode = v
	}
	if v := os.Getenv("NODE_BIND"); v != "" {
		cfg.Node.Bind = v
	} else if cfg.Node.Bind == "" {
		cfg.Node.Bind = "0.0.0.0"
	}
	if v := os.Getenv("NODE_HOST"); v != "" {
		cfg.Node.Host = v
	}
	if v := os.Getenv("NODE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Node.Port = port
		}
	}

	if v := os.Getenv("BOOTSTRAP_MODE"); v != "" {
		cfg.Bootstrap.Mode = v
	}
	if v := os.Getenv("BOOTSTRAP_PEERS"); v != "" {
		cfg.Bootstrap.Peers = strings.Split(v, ",")
	}
	if v := os.Getenv("ROUTE53_ZONE_ID"); v != "" {
		cfg.Bootstrap.Route53.HostedZoneID = v
	}
	if v := os.Getenv("ROUTE53_SUFFIX"); v != "" {
		cfg.Bootstrap.Route53.DomainSuffix = v
	}
	if v := os.Getenv("ROUTE53_TTL"); v != "" {
		if ttl, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Bootstrap.Route53.TTL = ttl
		}
	}

	if v := os.Getenv("RING_SUCCESSOR_LIST_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ring.SuccessorListSize = n
		}
	}
	if v := os.Getenv("RING_MAINTENANCE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ring.Maintenance.Interval = d
		}
	}

	if v := os.Getenv("TRACE_ENABLED"); v != "" {
		v = strings.ToLower(v)
		cfg.Telemetry.Tracing.Enabled = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("TRACE_EXPORTER"); v != "" {
		cfg.Telemetry.Tracing.Exporter = v
	}
	if v := os.Getenv("TRACE_ENDPOINT"); v != "" {
		cfg.Telemetry.Tracing.Endpoint = v
	}

	if v := os.Getenv("LOGGER_ENABLED"); v != "" {
		v = strings.ToLower(v)
		cfg.Logger.Active = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("LOGGER_ENCODING"); v != "" {
		cfg.Logger.Encoding = v
	}
	if v := os.Getenv("LOGGER_MODE"); v != "" {
		cfg.Logger.Mode = v
	}
	if v := os.Getenv("LOGGER_FILE_PATH"); v != "" {
		cfg.Logger.File.Path = v
	}
}

// ValidateConfig performs structural validation of the loaded
// configuration, accumulating every problem found into a single
// error rather than failing on the first one.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
		if cfg.Logger.File.MaxSize < 0 || cfg.Logger.File.MaxBackups < 0 || cfg.Logger.File.MaxAge < 0 {
			errs = append(errs, "logger.file.* values must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	if cfg.Ring.SuccessorListSize <= 0 {
		errs = append(errs, "ring.successorListSize must be > 0")
	}
	if cfg.Ring.Maintenance.Interval <= 0 {
		errs = append(errs, "ring.maintenance.interval must be > 0")
	}
	if cfg.Ring.Maintenance.JoinRetryInterval <= 0 {
		errs = append(errs, "ring.maintenance.joinRetryInterval must be > 0")
	}
	if cfg.Ring.Maintenance.MaxJoinRetries <= 0 {
		errs = append(errs, "ring.maintenance.maxJoinRetries must be > 0")
	}
	if cfg.Ring.Maintenance.RequestTimeout <= 0 {
		errs = append(errs, "ring.maintenance.requestTimeout must be > 0")
	}

	b := cfg.Bootstrap
	switch b.Mode {
	case "static":
		for _, p := range b.Peers {
			if _, _, err := net.SplitHostPort(p); err != nil {
				errs = append(errs, fmt.Sprintf("invalid peer address %q in bootstrap.peers: %v", p, err))
			}
		}
	case "route53":
		if b.Route53.HostedZoneID == "" {
			errs = append(errs, "bootstrap.route53.hostedZoneId is required when bootstrap.mode=route53")
		}
		if b.Route53.DomainSuffix == "" {
			errs = append(errs, "bootstrap.route53.domainSuffix is required when bootstrap.mode=route53")
		}
		if b.Route53.TTL <= 0 {
			errs = append(errs, "bootstrap.route53.ttl must be > 0 when bootstrap.mode=route53")
		}
	case "init":
		// first node of a fresh ring, no further constraints
	default:
		errs = append(errs, fmt.Sprintf("invalid bootstrap.mode: %s (must be static, route53 or init)", b.Mode))
	}

	switch cfg.Node.Mode {
	case "public", "private":
	default:
		errs = append(errs, fmt.Sprintf("invalid node.mode: %s", cfg.Node.Mode))
	}
	if cfg.Node.Port < 0 || cfg.Node.Port > 65535 {
		errs = append(errs, fmt.Sprintf("node.port must be in [0,65535], got %d", cfg.Node.Port))
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
		if cfg.Telemetry.Tracing.Endpoint == "" && cfg.Telemetry.Tracing.Exporter == "otlp" {
			errs = append(errs, "telemetry.tracing.endpoint is required for the otlp exporter")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig dumps the effective configuration at DEBUG level, useful
// for diagnosing startup issues.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("loaded configuration",
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("logger.file.path", cfg.Logger.File.Path),

		logger.F("ring.successorListSize", cfg.Ring.SuccessorListSize),
		logger.F("ring.maintenance.interval", cfg.Ring.Maintenance.Interval.String()),
		logger.F("ring.maintenance.joinRetryInterval", cfg.Ring.Maintenance.JoinRetryInterval.String()),
		logger.F("ring.maintenance.maxJoinRetries", cfg.Ring.Maintenance.MaxJoinRetries),
		logger.F("ring.maintenance.requestTimeout", cfg.Ring.Maintenance.RequestTimeout.String()),

		logger.F("bootstrap.mode", cfg.Bootstrap.Mode),
		logger.F("bootstrap.peers", cfg.Bootstrap.Peers),
		logger.F("bootstrap.route53.hostedZoneId", cfg.Bootstrap.Route53.HostedZoneID),
		logger.F("bootstrap.route53.domainSuffix", cfg.Bootstrap.Route53.DomainSuffix),

		logger.F("node.id", cfg.Node.Id),
		logger.F("node.mode", cfg.Node.Mode),
		logger.F("node.bind", cfg.Node.Bind),
		logger.F("node.host", cfg.Node.Host),
		logger.F("node.port", cfg.Node.Port),

		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
		logger.F("telemetry.tracing.endpoint", cfg.Telemetry.Tracing.Endpoint),
	)
}
