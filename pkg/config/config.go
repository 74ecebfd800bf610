/*
Package config loads the aggregator's configuration from a YAML file, then
applies environment-variable overrides — a two-stage load where runtime
environment always wins over the file, collapsed here to a single struct
since the aggregator runs as one sidecar process rather than a
multi-role binary.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete set of aggregator options, plus the ambient
// fields (logging, metrics/gRPC bind addresses) a real deployment needs.
type Config struct {
	WorkerPoolSize         int    `yaml:"worker_pool_size"`
	LivenessCheckIntervalS float64 `yaml:"liveness_check_interval_s"`
	MaxEventBufferSize     int    `yaml:"max_event_buffer_size"`
	MaxEventSendBatchSize  int    `yaml:"max_event_send_batch_size"`
	EventsExportAddr       string `yaml:"events_export_addr"`
	ExposableEventTypes    string `yaml:"exposable_event_types"`
	PublishToHTTP          bool   `yaml:"publish_to_http"`
	PublishToControlPlane  bool   `yaml:"publish_to_control_plane"`

	// Ambient fields: every real deployment of a sidecar like this needs
	// to bind somewhere and control its own verbosity.
	GRPCAddr            string `yaml:"grpc_addr"`
	MetricsAddr         string `yaml:"metrics_addr"`
	ControlPlaneAddr    string `yaml:"control_plane_addr"`
	LogLevel            string `yaml:"log_level"`
	LogJSON             bool   `yaml:"log_json"`
	PublishPullTimeoutS float64 `yaml:"publish_pull_timeout_s"`
	MaxRetries          int    `yaml:"max_retries"`
	InitialBackoffMS    int    `yaml:"initial_backoff_ms"`
	MaxBackoffMS        int    `yaml:"max_backoff_ms"`
	JitterRatio         float64 `yaml:"jitter_ratio"`
}

// Default returns the configuration used when no file or override is
// present.
func Default() Config {
	return Config{
		WorkerPoolSize:         1,
		LivenessCheckIntervalS: 0.1,
		MaxEventBufferSize:     1_000_000,
		MaxEventSendBatchSize:  10_000,
		EventsExportAddr:       "",
		ExposableEventTypes:    "",
		PublishToHTTP:          false,
		PublishToControlPlane:  false,

		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		ControlPlaneAddr:    "localhost:50052",
		LogLevel:            "info",
		LogJSON:             false,
		PublishPullTimeoutS: 1.0,
		MaxRetries:          5,
		InitialBackoffMS:    100,
		MaxBackoffMS:        10_000,
		JitterRatio:         0.2,
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// AGGREGATOR_-prefixed environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides mutates cfg in place from AGGREGATOR_* environment
// variables, one per field, so runtime environment always wins over
// file-based config.
func applyEnvOverrides(cfg *Config) {
	envString("AGGREGATOR_EVENTS_EXPORT_ADDR", &cfg.EventsExportAddr)
	envString("AGGREGATOR_EXPOSABLE_EVENT_TYPES", &cfg.ExposableEventTypes)
	envString("AGGREGATOR_GRPC_ADDR", &cfg.GRPCAddr)
	envString("AGGREGATOR_METRICS_ADDR", &cfg.MetricsAddr)
	envString("AGGREGATOR_CONTROL_PLANE_ADDR", &cfg.ControlPlaneAddr)
	envString("AGGREGATOR_LOG_LEVEL", &cfg.LogLevel)

	envBool("AGGREGATOR_PUBLISH_TO_HTTP", &cfg.PublishToHTTP)
	envBool("AGGREGATOR_PUBLISH_TO_CONTROL_PLANE", &cfg.PublishToControlPlane)
	envBool("AGGREGATOR_LOG_JSON", &cfg.LogJSON)

	envInt("AGGREGATOR_WORKER_POOL_SIZE", &cfg.WorkerPoolSize)
	envInt("AGGREGATOR_MAX_EVENT_BUFFER_SIZE", &cfg.MaxEventBufferSize)
	envInt("AGGREGATOR_MAX_EVENT_SEND_BATCH_SIZE", &cfg.MaxEventSendBatchSize)
	envInt("AGGREGATOR_MAX_RETRIES", &cfg.MaxRetries)
	envInt("AGGREGATOR_INITIAL_BACKOFF_MS", &cfg.InitialBackoffMS)
	envInt("AGGREGATOR_MAX_BACKOFF_MS", &cfg.MaxBackoffMS)

	envFloat("AGGREGATOR_LIVENESS_CHECK_INTERVAL_S", &cfg.LivenessCheckIntervalS)
	envFloat("AGGREGATOR_PUBLISH_PULL_TIMEOUT_S", &cfg.PublishPullTimeoutS)
	envFloat("AGGREGATOR_JITTER_RATIO", &cfg.JitterRatio)
}

// ExposableKinds splits the comma-separated ExposableEventTypes field into
// trimmed, non-empty entries.
func (c Config) ExposableKinds() []string {
	if strings.TrimSpace(c.ExposableEventTypes) == "" {
		return nil
	}
	parts := strings.Split(c.ExposableEventTypes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PublishPullTimeout returns PublishPullTimeoutS as a time.Duration.
func (c Config) PublishPullTimeout() time.Duration {
	return time.Duration(c.PublishPullTimeoutS * float64(time.Second))
}

// LivenessCheckInterval returns LivenessCheckIntervalS as a time.Duration.
func (c Config) LivenessCheckInterval() time.Duration {
	return time.Duration(c.LivenessCheckIntervalS * float64(time.Second))
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
