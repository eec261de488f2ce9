package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Flickr        FlickrConfig        `mapstructure:"flickr"`
	Thumbnails    ThumbnailConfig     `mapstructure:"thumbnails"`
	Polling       PollingConfig       `mapstructure:"polling"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Browser       BrowserConfig       `mapstructure:"browser"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// FlickrConfig holds photo service configuration
type FlickrConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ThumbnailConfig sizes the thumbnail pipeline
type ThumbnailConfig struct {
	CacheSize int `mapstructure:"cache_size"` // Decoded images kept in memory
	QueueSize int `mapstructure:"queue_size"` // Pending download tasks
}

// PollingConfig holds the background poll job settings
type PollingConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	JobName      string        `mapstructure:"job_name"`
	ProbeAddress string        `mapstructure:"probe_address"` // host:port dialed to check connectivity
}

// NotificationsConfig holds notification surface settings
type NotificationsConfig struct {
	Desktop bool   `mapstructure:"desktop"` // Use notify-send; otherwise log only
	AppName string `mapstructure:"app_name"`
}

// BrowserConfig holds the program used to open photo pages
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty = system default
	Args    []string `mapstructure:"args"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	Dir string `mapstructure:"dir"` // Empty = memory only
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Flickr: FlickrConfig{
			BaseURL: "https://api.flickr.com/",
			Timeout: 30 * time.Second,
		},
		Thumbnails: ThumbnailConfig{
			CacheSize: 50,
			QueueSize: 256,
		},
		Polling: PollingConfig{
			Interval:     15 * time.Minute,
			JobName:      "poll_worker",
			ProbeAddress: "api.flickr.com:443",
		},
		Notifications: NotificationsConfig{
			Desktop: true,
			AppName: "shutter",
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "shutter.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shutter")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shutter")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shutter")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shutter")
	}
}

// LoadConfig loads configuration from file and environment.
// An explicit path overrides the default search locations.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. SHUTTER_FLICKR_API_KEY
	v.SetEnvPrefix("SHUTTER")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration to the default location
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("flickr.api_key", cfg.Flickr.APIKey)
	v.Set("flickr.base_url", cfg.Flickr.BaseURL)
	v.Set("flickr.timeout", cfg.Flickr.Timeout.String())

	v.Set("thumbnails.cache_size", cfg.Thumbnails.CacheSize)
	v.Set("thumbnails.queue_size", cfg.Thumbnails.QueueSize)

	v.Set("polling.interval", cfg.Polling.Interval.String())
	v.Set("polling.job_name", cfg.Polling.JobName)
	v.Set("polling.probe_address", cfg.Polling.ProbeAddress)

	v.Set("notifications.desktop", cfg.Notifications.Desktop)
	v.Set("notifications.app_name", cfg.Notifications.AppName)

	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)

	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Thumbnails.CacheSize <= 0 {
		return fmt.Errorf("thumbnails.cache_size must be positive, got %d", c.Thumbnails.CacheSize)
	}
	if c.Thumbnails.QueueSize <= 0 {
		return fmt.Errorf("thumbnails.queue_size must be positive, got %d", c.Thumbnails.QueueSize)
	}
	if c.Polling.Interval < time.Minute {
		return fmt.Errorf("polling.interval must be at least 1m, got %s", c.Polling.Interval)
	}
	if c.Polling.JobName == "" {
		return fmt.Errorf("polling.job_name is required")
	}
	return nil
}

// envKeyReplacer maps nested keys to env names (flickr.api_key -> SHUTTER_FLICKR_API_KEY)
var envKeyReplacer = strings.NewReplacer(".", "_")

// bindEnvKeys makes nested keys visible to Unmarshal when only set via the environment
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"flickr.api_key", "flickr.base_url", "flickr.timeout",
		"thumbnails.cache_size", "thumbnails.queue_size",
		"polling.interval", "polling.job_name", "polling.probe_address",
		"notifications.desktop", "notifications.app_name",
		"browser.command", "browser.args",
		"storage.dir",
		"logging.file", "logging.level", "logging.max_size_mb", "logging.max_backups",
	} {
		_ = v.BindEnv(key)
	}
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.Flickr.APIKey != ""
}
