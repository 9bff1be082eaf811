package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "memory"
	}
	if cfg.Provider.StoreID == "" {
		cfg.Provider.StoreID = cfg.Provider.Name
	}
	if cfg.Triage.ResumeMode == "" {
		cfg.Triage.ResumeMode = "auto"
	}
	if cfg.Triage.PageSize == 0 {
		cfg.Triage.PageSize = 100
	}
	if cfg.Triage.FetchChunkSize == 0 {
		cfg.Triage.FetchChunkSize = 20
	}
	if cfg.Triage.MutateChunkSize == 0 {
		cfg.Triage.MutateChunkSize = 1000
	}
	if cfg.Triage.Retry.MaxAttempts == 0 {
		cfg.Triage.Retry.MaxAttempts = 5
	}
	if cfg.Triage.Retry.InitialDelay == 0 {
		cfg.Triage.Retry.InitialDelay = 1 * time.Second
	}
	if cfg.Triage.Retry.MaxDelay == 0 {
		cfg.Triage.Retry.MaxDelay = 60 * time.Second
	}
	if cfg.Triage.Retry.BackoffMultiple == 0 {
		cfg.Triage.Retry.BackoffMultiple = 2.0
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = "file"
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = defaultStateDir()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mailtriage"
	}
	return home + "/.mailtriage"
}
