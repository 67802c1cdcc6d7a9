// Package config loads the environment-based configuration shared by
// cmd/orchestrator and cmd/worker, following the reference controller's
// envconfig + godotenv loader shape.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig is the full set of EXECQ_* environment variables §6 of
// SPEC_FULL.md defines. Both the orchestrator and worker binaries load
// this same struct and use the fields relevant to their role.
type EnvConfig struct {
	Environment string `envconfig:"EXECQ_ENVIRONMENT" default:"development"`

	Port string `envconfig:"EXECQ_PORT" default:"8080"`

	RedisHost     string `envconfig:"EXECQ_REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"EXECQ_REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"EXECQ_REDIS_PASSWORD"`

	Namespace      string `envconfig:"EXECQ_NAMESPACE" default:"default"`
	DeploymentName string `envconfig:"EXECQ_DEPLOYMENT_NAME" default:"execq-worker"`
	PodSelector    string `envconfig:"EXECQ_POD_SELECTOR" default:"app=execq-worker"`

	MinPods          int     `envconfig:"EXECQ_MIN_PODS" default:"1"`
	MaxPods          int     `envconfig:"EXECQ_MAX_PODS" default:"10"`
	JobsPerPod       int     `envconfig:"EXECQ_JOBS_PER_POD" default:"5"`
	CheckIntervalMS  int64   `envconfig:"EXECQ_CHECK_INTERVAL_MS" default:"10000"`
	CPUHighWatermark float64 `envconfig:"EXECQ_CPU_HIGH_WATERMARK" default:"0.8"`

	WebhookTimeoutMS int `envconfig:"EXECQ_WEBHOOK_TIMEOUT_MS" default:"5000"`
}

// IsDev reports whether godotenv should attempt to load a local .env file.
// Mirrors the reference controller's utils.IsDev check.
func IsDev() bool {
	env := strings.ToLower(os.Getenv("EXECQ_ENVIRONMENT"))
	return env == "" || env == "development" || env == "dev"
}

// Load reads EXECQ_* environment variables into an EnvConfig, loading a
// local .env file first in non-production environments.
func Load() (*EnvConfig, error) {
	if IsDev() {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found")
		} else {
			log.Println("loaded .env file")
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: loading environment variables: %w", err)
	}

	if cfg.MinPods < 0 {
		return nil, fmt.Errorf("config: EXECQ_MIN_PODS must be >= 0")
	}
	if cfg.MaxPods < cfg.MinPods {
		return nil, fmt.Errorf("config: EXECQ_MAX_PODS must be >= EXECQ_MIN_PODS")
	}

	return &cfg, nil
}

// RedisAddr formats the host:port pair go-redis expects.
func (c *EnvConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Print logs the effective configuration at startup, matching the
// reference controller's Print convention (secrets are never logged in
// full — the Redis password, here, is the only candidate and is omitted
// entirely rather than masked).
func (c *EnvConfig) Print(fmtr func(string, ...interface{})) {
	fmtr("configuration:")
	fmtr("  environment: %s", c.Environment)
	fmtr("  port: %s", c.Port)
	fmtr("  redis: %s", c.RedisAddr())
	fmtr("  namespace: %s", c.Namespace)
	fmtr("  deployment: %s", c.DeploymentName)
	fmtr("  pod selector: %s", c.PodSelector)
	fmtr("  pods: min=%d max=%d jobs_per_pod=%d", c.MinPods, c.MaxPods, c.JobsPerPod)
	fmtr("  check interval: %dms", c.CheckIntervalMS)
	fmtr("  cpu high watermark: %.2f", c.CPUHighWatermark)
}
