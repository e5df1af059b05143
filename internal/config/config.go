package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the labctl configuration
type Config struct {
	ComposeBin   string                       `yaml:"compose_bin"`              // container engine binary, invoked as "<bin> compose ..."
	EnvFile      string                       `yaml:"env_file,omitempty"`       // default env file passed via --env-file
	OverrideFile string                       `yaml:"override_file,omitempty"`  // optional compose override file
	LogLevel     string                       `yaml:"log_level,omitempty"`
	Environments map[string]EnvironmentConfig `yaml:"environments"`
	Lint         LintConfig                   `yaml:"lint"`
	Docs         DocsConfig                   `yaml:"docs"`
	History      HistoryConfig                `yaml:"history"`
	Server       ServerConfig                 `yaml:"server"`
	Probe        ProbeConfig                  `yaml:"probe"`
	Maintenance  MaintenanceConfig            `yaml:"maintenance"`
}

// EnvironmentConfig binds a named environment to a compose file and services
type EnvironmentConfig struct {
	ComposeFile string   `yaml:"compose_file"`
	Services    []string `yaml:"services"`
	Probe       bool     `yaml:"probe,omitempty"`
}

// LintConfig describes the one-shot lint service
type LintConfig struct {
	ComposeFile string `yaml:"compose_file"`
	Service     string `yaml:"service"`
}

// DocsConfig describes the documentation source/output pair
type DocsConfig struct {
	SourceDir string `yaml:"source_dir"`
	OutputDir string `yaml:"output_dir"`
	Port      int    `yaml:"port"`
	Title     string `yaml:"title,omitempty"`
}

// HistoryConfig describes the run history store
type HistoryConfig struct {
	URI string `yaml:"uri"` // SQLite file path
}

// ServerConfig describes the status API server
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin,omitempty"`
}

// ProbeConfig describes post-launch readiness checks
type ProbeConfig struct {
	DashboardURL   string `yaml:"dashboard_url"`
	MongoURI       string `yaml:"mongo_uri"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	AttemptsPerSec float64 `yaml:"attempts_per_sec,omitempty"`
}

// MaintenanceConfig describes scheduled engine housekeeping
type MaintenanceConfig struct {
	PruneCron string `yaml:"prune_cron"` // cron expression for engine pruning while serve runs
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ComposeBin: "docker",
		LogLevel:   "info",
		Environments: map[string]EnvironmentConfig{
			"dev": {
				ComposeFile: "docker/docker-compose.dev.yml",
				Services:    []string{"dashboard", "mongo"},
				Probe:       true,
			},
			"prod": {
				ComposeFile: "docker/docker-compose.prod.yml",
				Services:    []string{"dashboard", "mongo", "caddy"},
				Probe:       true,
			},
			"docs": {
				ComposeFile: "docker/docker-compose.docs.yml",
				Services:    []string{"docs"},
			},
		},
		Lint: LintConfig{
			ComposeFile: "docker/docker-compose.dev.yml",
			Service:     "lint",
		},
		Docs: DocsConfig{
			SourceDir: "docs/src",
			OutputDir: "docs/build",
			Port:      8000,
			Title:     "DashLab",
		},
		History: HistoryConfig{
			URI: "~/.labctl/history.db",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8989",
		},
		Probe: ProbeConfig{
			DashboardURL:   "http://localhost:7777",
			MongoURI:       "mongodb://localhost:27017",
			TimeoutSeconds: 60,
			AttemptsPerSec: 1,
		},
		Maintenance: MaintenanceConfig{
			PruneCron: "0 3 * * *",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.ComposeBin == "" {
		config.ComposeBin = "docker"
	}

	return &config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Environment returns the named environment, with the name filled in
func (c *Config) Environment(name string) (EnvironmentConfig, error) {
	env, ok := c.Environments[name]
	if !ok {
		return EnvironmentConfig{}, fmt.Errorf("unknown environment: %s", name)
	}
	return env, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".labctl/config.yaml"
	}
	return filepath.Join(home, ".labctl", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
