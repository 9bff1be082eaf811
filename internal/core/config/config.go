package config

import (
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	redisclient "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/redis"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server      ServerConfig          `yaml:"server"`
	Provider    ProviderConfig        `yaml:"provider"`
	Triage      TriageConfig          `yaml:"triage"`
	State       StateConfig           `yaml:"state"`
	Redis       redisclient.Config    `yaml:"redis"`
	Database    postgres.Config       `yaml:"database"`
	Logging     LoggingConfig         `yaml:"logging"`
	VIPs        []VIPConfig           `yaml:"vips"`
	CustomRules []domain.CategoryRule `yaml:"custom_rules"`
}

// ServerConfig holds health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ProviderConfig holds settings for the mail backing store.
type ProviderConfig struct {
	// Name selects the provider implementation (e.g. "memory").
	Name string `yaml:"name"`
	// StoreID keys checkpoint state and the dead-letter queue; defaults
	// to the provider name.
	StoreID string `yaml:"store_id"`
	// StableQuery is the query whose result set this run's own
	// mutations do not shrink; only it is cursor-resumable by default.
	StableQuery string `yaml:"stable_query"`
}

// TriageConfig holds run-loop settings.
type TriageConfig struct {
	Query             string        `yaml:"query"`
	ResumeMode        string        `yaml:"resume_mode"` // auto, never, always
	PageSize          int           `yaml:"page_size"`
	FetchChunkSize    int           `yaml:"fetch_chunk_size"`
	MutateChunkSize   int           `yaml:"mutate_chunk_size"`
	Throttle          time.Duration `yaml:"throttle"`
	RemoveSourceLabel string        `yaml:"remove_source_label"`
	EnableEscalation  bool          `yaml:"enable_escalation"`
	Retry             RetryConfig   `yaml:"retry"`
}

// RetryConfig holds backoff settings for rate-limited provider calls.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// StateConfig selects where checkpoint state lives.
type StateConfig struct {
	// Backend is one of "file", "memory", "postgres".
	Backend string `yaml:"backend"`
	// Dir is the state directory for the file backend.
	Dir string `yaml:"dir"`
}

// VIPConfig declares a sender override.
type VIPConfig struct {
	Key           string `yaml:"key"`
	SenderPattern string `yaml:"sender_pattern"`
	Tier          int    `yaml:"tier"`
	Star          bool   `yaml:"star"`
	LabelOverride string `yaml:"label_override"`
	Note          string `yaml:"note"`
}
