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

const appName = "storefront"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Admin   AdminConfig   `mapstructure:"admin"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the store API connection settings
type ServerConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"` // GET requests only
}

// SessionConfig holds the remembered sign-in, if any
type SessionConfig struct {
	Remember bool   `mapstructure:"remember"`
	Token    string `mapstructure:"token"`
	Username string `mapstructure:"username"`
	IsAdmin  bool   `mapstructure:"is_admin"`
}

// AdminConfig lists the accounts that get admin controls
type AdminConfig struct {
	Usernames []string `mapstructure:"usernames"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultSort       string        `mapstructure:"default_sort"`
	NotificationDelay time.Duration `mapstructure:"notification_delay"`
	InspectorWidth    int           `mapstructure:"inspector_width"`
	Browser           string        `mapstructure:"browser"` // Empty for the system default
	BrowserArgs       []string      `mapstructure:"browser_args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:        "http://localhost:8080",
			Timeout:    15 * time.Second,
			RetryCount: 2,
		},
		Session: SessionConfig{
			Remember: true,
		},
		Admin: AdminConfig{
			Usernames: []string{"admin@demo.com"},
		},
		UI: UIConfig{
			DefaultSort:       "NONE",
			NotificationDelay: 4 * time.Second,
			InspectorWidth:    40,
			BrowserArgs:       []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultConfigPath returns the config directory. STOREFRONT_CONFIG_DIR
// overrides the OS default.
func defaultConfigPath() string {
	if dir := os.Getenv("STOREFRONT_CONFIG_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// setDefaults registers every key so environment overrides apply to
// values missing from the file.
func setDefaults(cfg *Config) {
	viper.SetDefault("server.url", cfg.Server.URL)
	viper.SetDefault("server.timeout", cfg.Server.Timeout)
	viper.SetDefault("server.retry_count", cfg.Server.RetryCount)
	viper.SetDefault("session.remember", cfg.Session.Remember)
	viper.SetDefault("session.token", cfg.Session.Token)
	viper.SetDefault("session.username", cfg.Session.Username)
	viper.SetDefault("session.is_admin", cfg.Session.IsAdmin)
	viper.SetDefault("admin.usernames", cfg.Admin.Usernames)
	viper.SetDefault("ui.default_sort", cfg.UI.DefaultSort)
	viper.SetDefault("ui.notification_delay", cfg.UI.NotificationDelay)
	viper.SetDefault("ui.inspector_width", cfg.UI.InspectorWidth)
	viper.SetDefault("ui.browser", cfg.UI.Browser)
	viper.SetDefault("ui.browser_args", cfg.UI.BrowserArgs)
	viper.SetDefault("logging.file", cfg.Logging.File)
	viper.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(cfg)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides, e.g. STOREFRONT_SERVER_URL
	viper.SetEnvPrefix("STOREFRONT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.timeout", cfg.Server.Timeout.String())
	viper.Set("server.retry_count", cfg.Server.RetryCount)

	viper.Set("session.remember", cfg.Session.Remember)
	viper.Set("session.token", cfg.Session.Token)
	viper.Set("session.username", cfg.Session.Username)
	viper.Set("session.is_admin", cfg.Session.IsAdmin)

	viper.Set("admin.usernames", cfg.Admin.Usernames)

	viper.Set("ui.default_sort", cfg.UI.DefaultSort)
	viper.Set("ui.notification_delay", cfg.UI.NotificationDelay.String())
	viper.Set("ui.inspector_width", cfg.UI.InspectorWidth)
	viper.Set("ui.browser", cfg.UI.Browser)
	viper.Set("ui.browser_args", cfg.UI.BrowserArgs)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return writeConfig()
}

// SaveSession updates just the remembered session in the configuration
func SaveSession(token, username string, isAdmin bool) error {
	viper.Set("session.token", token)
	viper.Set("session.username", username)
	viper.Set("session.is_admin", isAdmin)
	return writeConfig()
}

// ClearSession removes the remembered session while preserving other settings
func ClearSession() error {
	return SaveSession("", "", false)
}

// SessionStore remembers the signed-in session in the config file
type SessionStore struct{}

func (SessionStore) Save(token, username string, isAdmin bool) error {
	return SaveSession(token, username, isAdmin)
}

func (SessionStore) Clear() error { return ClearSession() }

func writeConfig() error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if a server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// HasSession returns true if a remembered session token is present
func (c *Config) HasSession() bool {
	return c.Session.Remember && c.Session.Token != ""
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// ClearCache removes all cached data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
