package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "lazy/internal/errors"
	"lazy/internal/log"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the default config file location
const EnvPath = "LAZY_CONFIG"

// Config holds the user settings persisted in config.yaml.
// Unset fields are left out of the written file.
type Config struct {
	Verbose                  bool     `yaml:"verbose,omitempty"`                    // Enable verbose output
	DefaultDownloadsFolder   string   `yaml:"default_downloads_folder,omitempty"`   // Default folder for organize
	DefaultBackupDestination string   `yaml:"default_backup_destination,omitempty"` // Default backup destination
	StockWatchlist           []string `yaml:"stock_watchlist,omitempty"`            // Stock symbols to watch
}

// New returns the default configuration.
func New() *Config {
	return &Config{StockWatchlist: []string{}}
}

// DefaultPath returns $LAZY_CONFIG when set, else ~/.lazy-cli/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return ExpandHome(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", apperrors.Wrap(err, "cannot determine home directory")
	}
	return filepath.Join(home, ".lazy-cli", "config.yaml"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// key describes one settable field
type key struct {
	name  string
	help  string
	get   func(c *Config) string
	set   func(c *Config, value string) error
	unset func(c *Config)
}

var keys = []key{
	{
		name: "verbose",
		help: "Enable verbose output",
		get:  func(c *Config) string { return strconv.FormatBool(c.Verbose) },
		set: func(c *Config, value string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return err
			}
			c.Verbose = b
			return nil
		},
		unset: func(c *Config) { c.Verbose = false },
	},
	{
		name: "default_downloads_folder",
		help: "Folder organized when no directory is given",
		get:  func(c *Config) string { return c.DefaultDownloadsFolder },
		set: func(c *Config, value string) error {
			c.DefaultDownloadsFolder = ExpandHome(strings.TrimSpace(value))
			return nil
		},
		unset: func(c *Config) { c.DefaultDownloadsFolder = "" },
	},
	{
		name: "default_backup_destination",
		help: "Default backup destination",
		get:  func(c *Config) string { return c.DefaultBackupDestination },
		set: func(c *Config, value string) error {
			c.DefaultBackupDestination = ExpandHome(strings.TrimSpace(value))
			return nil
		},
		unset: func(c *Config) { c.DefaultBackupDestination = "" },
	},
	{
		name: "stock_watchlist",
		help: "Comma-separated stock symbols",
		get:  func(c *Config) string { return strings.Join(c.StockWatchlist, ",") },
		set: func(c *Config, value string) error {
			c.StockWatchlist = splitList(value)
			return nil
		},
		unset: func(c *Config) { c.StockWatchlist = []string{} },
	},
}

func lookup(name string) (key, error) {
	for _, k := range keys {
		if k.name == name {
			return k, nil
		}
	}
	return key{}, apperrors.NewConfigError(
		fmt.Sprintf("unknown config key (valid keys: %s)", strings.Join(Keys(), ", ")),
		name, apperrors.UnknownConfigKey, nil)
}

// Keys returns the config keys in file order.
func Keys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// Help returns the description of a key, or "" for unknown keys.
func Help(name string) string {
	k, err := lookup(name)
	if err != nil {
		return ""
	}
	return k.help
}

// Get returns the value of key formatted as text.
func (c *Config) Get(name string) (string, error) {
	k, err := lookup(name)
	if err != nil {
		return "", err
	}
	return k.get(c), nil
}

// Set parses value and stores it under key. An empty value resets the key.
func (c *Config) Set(name, value string) error {
	k, err := lookup(name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		k.unset(c)
		return nil
	}
	if err := k.set(c, value); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("invalid value %q", value), name, apperrors.InvalidConfigValue, err)
	}
	return nil
}

func splitList(value string) []string {
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// Store reads and writes one config file.
type Store struct {
	Path string
}

// NewStore returns a store for path, or for DefaultPath when path is empty.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{Path: ExpandHome(path)}, nil
}

// Load reads the config file. It always returns a usable configuration: a
// missing file yields the defaults, which are written back immediately, and
// unreadable or malformed content yields the defaults together with an error
// meant to be shown as a warning.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := New()
			log.Debugf("Config %s not found, writing defaults", s.Path)
			if err := s.Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return New(), apperrors.NewConfigError("could not read config", s.Path, apperrors.InvalidConfig, err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return New(), apperrors.NewConfigError("could not parse config", s.Path, apperrors.InvalidConfig, err)
	}
	if cfg.StockWatchlist == nil {
		cfg.StockWatchlist = []string{}
	}
	cfg.DefaultDownloadsFolder = ExpandHome(cfg.DefaultDownloadsFolder)
	cfg.DefaultBackupDestination = ExpandHome(cfg.DefaultBackupDestination)
	return cfg, nil
}

// Save writes cfg to the store path, creating the parent directory.
func (s *Store) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return apperrors.NewConfigError("failed to create config directory", s.Path, apperrors.InvalidConfig, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return apperrors.NewConfigError("failed to marshal config", s.Path, apperrors.InvalidConfig, err)
	}

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return apperrors.NewConfigError("failed to write config", s.Path, apperrors.InvalidConfig, err)
	}
	return nil
}

// Get loads the file and returns one value.
func (s *Store) Get(name string) (string, error) {
	cfg, err := s.Load()
	if err != nil {
		log.Warnf("Using default configuration: %v", err)
	}
	return cfg.Get(name)
}

// Set loads the file, changes one value and saves it again. Two concurrent
// invocations may both read before either writes; the last writer wins.
func (s *Store) Set(name, value string) error {
	cfg, err := s.Load()
	if err != nil {
		log.Warnf("Using default configuration: %v", err)
	}
	if err := cfg.Set(name, value); err != nil {
		return err
	}
	return s.Save(cfg)
}
