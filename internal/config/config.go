// Package config loads the resolver daemon's YAML configuration file on
// top of built-in defaults. Command-line flag overrides are applied by
// cmd/resolverd, not here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML configuration shape.
type File struct {
	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metrics_listen"`

	QueryTimeout  time.Duration `yaml:"query_timeout"`
	MaxReferrals  int           `yaml:"max_referrals"`
	MaxCNAMEDepth int           `yaml:"max_cname_depth"`
	MaxGlueDepth  int           `yaml:"max_glue_depth"`

	EnableCookies bool `yaml:"enable_cookies"`

	EnableRateLimit  bool    `yaml:"enable_rate_limit"`
	QueriesPerSecond float64 `yaml:"queries_per_second"`
	BurstSize        int     `yaml:"burst_size"`
	ExemptNets       []string `yaml:"exempt_nets"`
}

// Default returns the configuration a fresh install runs with if no file
// is supplied.
func Default() File {
	return File{
		Listen:        "127.0.0.1:5300",
		MetricsListen: "",
		QueryTimeout:  5 * time.Second,
		MaxReferrals:  20,
		MaxCNAMEDepth: 8,
		MaxGlueDepth:  4,
		EnableCookies: false,
		EnableRateLimit: false,
		QueriesPerSecond: 100,
		BurstSize:        200,
	}
}

// Load reads and parses a YAML config file at path, starting from Default
// so any field the file omits keeps its default value.
func Load(path string) (*File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
