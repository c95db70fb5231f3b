package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultCheckIntervalSeconds     = 300
	DefaultLivenessIntervalSeconds  = 5
	DefaultHeartbeatIntervalSeconds = 30
	DefaultEnforceIntervalSeconds   = 10
	DefaultBackoffCeilingSeconds    = 1800
	DefaultMaxImmediateRestarts     = 3
	DefaultStopGraceMillis          = 1500
	DefaultRCPort                   = 9999
	DefaultDownloadDir              = "videos"
	DefaultIPEndpoint               = "https://api.ipify.org"
	DefaultDriveBaseURL             = "https://www.googleapis.com/drive/v3"
	DefaultSwapStrategy             = "restart"
	DefaultLogFile                  = "tv-player.log"
)

// Config is the full daemon configuration. It is constructed once at startup
// and passed by pointer into every component; nothing reads it globally.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Identity   IdentityConfig   `yaml:"identity"`
	Drive      DriveConfig      `yaml:"drive"`
	Player     PlayerConfig     `yaml:"player"`
	Supervisor SupervisorConfig `yaml:"monitoring"`
	Status     StatusConfig     `yaml:"status"`
}

// LogConfig controls log output and rotation.
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	Console    bool   `yaml:"console" env:"LOG_CONSOLE"`
}

// IdentityConfig controls how the node derives its identity key.
type IdentityConfig struct {
	IPEndpoint     string `yaml:"ip_endpoint" env:"IP_ENDPOINT" validate:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"IP_TIMEOUT_SECONDS" validate:"gte=1"`
	// Override skips external IP detection entirely, for fixed installs.
	Override string `yaml:"override" env:"IDENTITY_OVERRIDE"`
}

// DriveConfig holds the content source and fetcher settings.
type DriveConfig struct {
	APIKey       string `yaml:"api_key" env:"DRIVE_API_KEY" validate:"required"`
	MainFolderID string `yaml:"main_folder_id" env:"DRIVE_MAIN_FOLDER_ID" validate:"required"`
	BaseURL      string `yaml:"base_url" env:"DRIVE_BASE_URL" validate:"url"`
	DownloadDir  string `yaml:"download_folder" env:"DOWNLOAD_DIR" validate:"required"`
}

// PlayerConfig holds renderer process settings.
type PlayerConfig struct {
	// Path pins the renderer binary; empty means probe well-known locations.
	Path            string `yaml:"path" env:"PLAYER_PATH"`
	SwapStrategy    string `yaml:"swap_strategy" env:"PLAYER_SWAP_STRATEGY" validate:"oneof=restart rc"`
	RCPort          int    `yaml:"rc_port" env:"PLAYER_RC_PORT" validate:"gte=1,lte=65535"`
	Fullscreen      bool   `yaml:"fullscreen" env:"PLAYER_FULLSCREEN"`
	UsePlaylist     bool   `yaml:"use_playlist" env:"PLAYER_USE_PLAYLIST"`
	StopGraceMillis int    `yaml:"stop_grace_ms" env:"PLAYER_STOP_GRACE_MS" validate:"gte=100"`
	ReapOnStart     bool   `yaml:"reap_on_start" env:"PLAYER_REAP_ON_START"`
	EnforceVisible  bool   `yaml:"enforce_visible" env:"PLAYER_ENFORCE_VISIBLE"`
}

// SupervisorConfig holds the control loop timers and retry budgets.
type SupervisorConfig struct {
	CheckIntervalSeconds     int `yaml:"check_interval_seconds" env:"CHECK_INTERVAL_SECONDS" validate:"gte=5"`
	LivenessIntervalSeconds  int `yaml:"liveness_interval_seconds" env:"LIVENESS_INTERVAL_SECONDS" validate:"gte=1"`
	HeartbeatIntervalSeconds int `yaml:"heartbeat_interval" env:"HEARTBEAT_INTERVAL_SECONDS" validate:"gte=5"`
	EnforceIntervalSeconds   int `yaml:"enforce_interval_seconds" env:"ENFORCE_INTERVAL_SECONDS" validate:"gte=1"`
	BackoffCeilingSeconds    int `yaml:"backoff_ceiling_seconds" env:"BACKOFF_CEILING_SECONDS" validate:"gte=60"`
	MaxImmediateRestarts     int `yaml:"max_immediate_restarts" env:"MAX_IMMEDIATE_RESTARTS" validate:"gte=1,lte=10"`
}

// StatusConfig holds the optional external status sinks.
type StatusConfig struct {
	FirebaseCredentialsPath string `yaml:"firebase_credentials_path" env:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseDatabaseURL     string `yaml:"firebase_database_url" env:"FIREBASE_DATABASE_URL"`
	MQTTBroker              string `yaml:"mqtt_broker" env:"MQTT_BROKER"`
	MQTTTopicPrefix         string `yaml:"mqtt_topic_prefix" env:"MQTT_TOPIC_PREFIX"`
}

// Timer accessors; intervals are stored as plain seconds in config files.

func (c SupervisorConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

func (c SupervisorConfig) LivenessInterval() time.Duration {
	return time.Duration(c.LivenessIntervalSeconds) * time.Second
}

func (c SupervisorConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

func (c SupervisorConfig) EnforceInterval() time.Duration {
	return time.Duration(c.EnforceIntervalSeconds) * time.Second
}

func (c SupervisorConfig) BackoffCeiling() time.Duration {
	return time.Duration(c.BackoffCeilingSeconds) * time.Second
}

func (c PlayerConfig) StopGrace() time.Duration {
	return time.Duration(c.StopGraceMillis) * time.Millisecond
}

func (c IdentityConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns a config populated with defaults; file and environment
// values are layered on top by Load.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			File:       DefaultLogFile,
			MaxSizeMB:  20,
			MaxBackups: 3,
			Console:    true,
		},
		Identity: IdentityConfig{
			IPEndpoint:     DefaultIPEndpoint,
			TimeoutSeconds: 10,
		},
		Drive: DriveConfig{
			BaseURL:     DefaultDriveBaseURL,
			DownloadDir: DefaultDownloadDir,
		},
		Player: PlayerConfig{
			SwapStrategy:    DefaultSwapStrategy,
			RCPort:          DefaultRCPort,
			Fullscreen:      true,
			UsePlaylist:     true,
			StopGraceMillis: DefaultStopGraceMillis,
			ReapOnStart:     true,
			EnforceVisible:  false,
		},
		Supervisor: SupervisorConfig{
			CheckIntervalSeconds:     DefaultCheckIntervalSeconds,
			LivenessIntervalSeconds:  DefaultLivenessIntervalSeconds,
			HeartbeatIntervalSeconds: DefaultHeartbeatIntervalSeconds,
			EnforceIntervalSeconds:   DefaultEnforceIntervalSeconds,
			BackoffCeilingSeconds:    DefaultBackoffCeilingSeconds,
			MaxImmediateRestarts:     DefaultMaxImmediateRestarts,
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if it exists), then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
