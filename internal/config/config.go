package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration options for the application
type Config struct {
	// Workspace configuration
	Root string `mapstructure:"root"` // Directory every operation is confined to

	// Apply behaviour
	DryRun            bool `mapstructure:"dry_run"`
	Confirm           bool `mapstructure:"confirm"`             // Ask before each change is written
	FuzzWarnThreshold int  `mapstructure:"fuzz_warn_threshold"` // Warn when matching needed this much fuzz

	// Journal configuration
	JournalPath string `mapstructure:"journal_path"` // Empty disables the journal

	// Watch configuration
	WatchDebounceMS int `mapstructure:"watch_debounce_ms"`

	// Logging configuration
	Debug   bool   `mapstructure:"debug"`    // Enable debug logging
	LogFile string `mapstructure:"log_file"` // Path to log file
}

const (
	// Default configuration values
	DefaultFuzzWarnThreshold = 100
	DefaultWatchDebounceMS   = 150
	DefaultConfigDir         = ".codex-patch"
	DefaultJournalName       = "journal.db"
	EnvPrefix                = "CODEX_PATCH"
)

// flagKeys maps config keys to the CLI flags that override them
var flagKeys = map[string]string{
	"root":                "root",
	"dry_run":             "dry-run",
	"confirm":             "confirm",
	"fuzz_warn_threshold": "fuzz-warn",
	"journal_path":        "journal",
	"watch_debounce_ms":   "debounce",
	"debug":               "debug",
	"log_file":            "log-file",
}

// Load loads configuration from the config file and environment variables
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags loads configuration from the config file, environment
// variables and, when fs is not nil, command-line flags. Flags that were
// set explicitly win over everything else.
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	configDir := getConfigDir()

	// Set up viper
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("root", getWorkingDirectory())
	v.SetDefault("dry_run", false)
	v.SetDefault("confirm", false)
	v.SetDefault("fuzz_warn_threshold", DefaultFuzzWarnThreshold)
	v.SetDefault("journal_path", filepath.Join(configDir, DefaultJournalName))
	v.SetDefault("watch_debounce_ms", DefaultWatchDebounceMS)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			v.SetConfigFile(f.Value.String())
		}
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	// Attempt to read the config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// WatchDebounce returns the inbox debounce interval
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func (c *Config) normalize() error {
	if c.Root == "" {
		c.Root = getWorkingDirectory()
	}
	root, err := filepath.Abs(expandHome(c.Root))
	if err != nil {
		return fmt.Errorf("error resolving root %q: %w", c.Root, err)
	}
	c.Root = root

	if c.JournalPath != "" && c.JournalPath != ":memory:" {
		c.JournalPath = expandHome(c.JournalPath)
	}
	c.LogFile = expandHome(c.LogFile)

	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = DefaultWatchDebounceMS
	}
	return nil
}

// Dir returns the path to the config directory
func Dir() string {
	return getConfigDir()
}

// getConfigDir returns the path to the config directory
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)

	// Create the directory if it doesn't exist
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		os.MkdirAll(configDir, 0755)
	}

	return configDir
}

// getWorkingDirectory returns the current working directory
func getWorkingDirectory() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
