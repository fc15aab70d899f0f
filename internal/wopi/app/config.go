package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
)

// Artifact sources.
const (
	ArtifactSourceSQLite = "sqlite"
	ArtifactSourceDir    = "dir"
)

type Config struct {
	Env                 string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	Port                int           `yaml:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)

	TokenSecret       string        `yaml:"token_secret"`        // HKDF input for the token key; ephemeral when empty
	TokenIssuer       string        `yaml:"token_issuer"`        // iss claim (default: wopihost)
	WopiHostURL       string        `yaml:"wopi_host_url"`       // Public base URL used in WOPISrc (default: http://localhost:{port})
	CollaboraURL      string        `yaml:"collabora_url"`       // Editor base URL (default: http://localhost:9980)
	PostMessageOrigin string        `yaml:"post_message_origin"` // CheckFileInfo PostMessageOrigin
	DiscoveryTTL      time.Duration `yaml:"discovery_ttl"`       // Discovery cache lifetime (default: 1h)

	LockTTL              time.Duration `yaml:"lock_ttl"`              // Lock lifetime (default: 30m)
	SessionIdleTTL       time.Duration `yaml:"session_idle_ttl"`      // Idle session eviction (default: 2h)
	MaxSessions          int           `yaml:"max_sessions"`          // Live session bound (default: 1000)
	MaxFileSize          int64         `yaml:"max_file_size"`         // PutFile/artifact body bound in bytes (default: 100 MiB)
	UnlockedWrites       string        `yaml:"unlocked_writes"`       // first-save, always, never (default: first-save)
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Lock sweep and eviction interval (default: 1m)

	ArtifactSource string `yaml:"artifact_source"`  // sqlite or dir (default: sqlite)
	ArtifactDBFile string `yaml:"artifact_db_file"` // SQLite catalogue path (default: artifacts.db)
	ArtifactDir    string `yaml:"artifact_dir"`     // Directory source path (default: Documents/Temp)
	AdminAPIKey    string `yaml:"admin_api_key"`    // Protects /v1; open when empty
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		TokenIssuer:          "wopihost",
		CollaboraURL:         "http://localhost:9980",
		DiscoveryTTL:         service.DefaultDiscoveryTTL,
		LockTTL:              service.DefaultLockTTL,
		SessionIdleTTL:       service.DefaultSessionIdleTTL,
		MaxSessions:          1000,
		MaxFileSize:          100 << 20,
		UnlockedWrites:       string(service.UnlockedWritesFirstSave),
		ArtifactSource:       ArtifactSourceSQLite,
		ArtifactDBFile:       "artifacts.db",
		ArtifactDir:          "Documents/Temp",
		HousekeepingInterval: time.Minute,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file
// named by WOPI_CONFIG_FILE, then environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("WOPI_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if cfg.WopiHostURL == "" {
		cfg.WopiHostURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.Port = getEnvIntOrDefault("PORT", c.Port)
	c.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", c.ShutdownGracePeriod)

	c.TokenSecret = getEnvOrDefault("WOPI_TOKEN_SECRET", c.TokenSecret)
	c.TokenIssuer = getEnvOrDefault("WOPI_TOKEN_ISSUER", c.TokenIssuer)
	c.WopiHostURL = getEnvOrDefault("WOPI_HOST_URL", c.WopiHostURL)
	c.CollaboraURL = getEnvOrDefault("COLLABORA_URL", c.CollaboraURL)
	c.PostMessageOrigin = getEnvOrDefault("WOPI_POST_MESSAGE_ORIGIN", c.PostMessageOrigin)
	c.DiscoveryTTL = getEnvDurationOrDefault("WOPI_DISCOVERY_TTL", c.DiscoveryTTL)

	c.LockTTL = getEnvDurationOrDefault("WOPI_LOCK_TTL", c.LockTTL)
	c.SessionIdleTTL = getEnvDurationOrDefault("WOPI_SESSION_IDLE_TTL", c.SessionIdleTTL)
	c.MaxSessions = getEnvIntOrDefault("WOPI_MAX_SESSIONS", c.MaxSessions)
	c.MaxFileSize = int64(getEnvIntOrDefault("WOPI_MAX_FILE_SIZE", int(c.MaxFileSize)))
	c.UnlockedWrites = getEnvOrDefault("WOPI_UNLOCKED_WRITES", c.UnlockedWrites)
	c.ArtifactSource = getEnvOrDefault("ARTIFACT_SOURCE", c.ArtifactSource)
	c.ArtifactDBFile = getEnvOrDefault("ARTIFACT_DATABASE_FILE", c.ArtifactDBFile)
	c.ArtifactDir = getEnvOrDefault("ARTIFACT_DIR", c.ArtifactDir)
	c.AdminAPIKey = getEnvOrDefault("ADMIN_API_KEY", c.AdminAPIKey)
	c.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", c.HousekeepingInterval)
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate rejects values the application cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if _, err := service.ParseUnlockedWritePolicy(c.UnlockedWrites); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.ArtifactSource {
	case ArtifactSourceSQLite, ArtifactSourceDir:
	default:
		return fmt.Errorf("%w: artifact source %q", ErrInvalidConfig, c.ArtifactSource)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("%w: max sessions must be positive", ErrInvalidConfig)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max file size must be positive", ErrInvalidConfig)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%w: lock ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
