package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rubiojr/cmdk/pkg/core"
)

//go:embed config.toml.sample
var configTemplate string

const (
	defaultDebounce          = 150 * time.Millisecond
	defaultAnalyticsDebounce = 500 * time.Millisecond
	defaultMinQueryLength    = 1
	defaultMaxResults        = 10
)

type Config struct {
	StorageDir   string             `toml:"storage_dir"`
	API          APIConfig          `toml:"api"`
	Organization *core.Organization `toml:"organization,omitempty"`
	Project      *core.Project      `toml:"project,omitempty"`
	Search       SearchConfig       `toml:"search"`
	Params       map[string]string  `toml:"params,omitempty"`
}

// APIConfig points at the console REST API. An empty BaseURL disables the
// remote source.
type APIConfig struct {
	BaseURL   string   `toml:"base_url"`
	Token     string   `toml:"token"`
	RateLimit float64  `toml:"rate_limit"`
	Timeout   Duration `toml:"timeout"`
}

type SearchConfig struct {
	MinQueryLength    int      `toml:"min_query_length"`
	MaxResults        int      `toml:"max_results"`
	Debounce          Duration `toml:"debounce"`
	AnalyticsDebounce Duration `toml:"analytics_debounce"`
	NavigationFile    string   `toml:"navigation_file"`
	Superuser         bool     `toml:"superuser"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	c := &Config{StorageDir: storageDir}
	c.applyDefaults()
	return c, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}
	config.applyDefaults()

	if config.Search.NavigationFile != "" && !filepath.IsAbs(config.Search.NavigationFile) {
		config.Search.NavigationFile = filepath.Join(filepath.Dir(configPath), config.Search.NavigationFile)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Search.MinQueryLength <= 0 {
		c.Search.MinQueryLength = defaultMinQueryLength
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = defaultMaxResults
	}
	if c.Search.Debounce.Duration == 0 {
		c.Search.Debounce = Duration{defaultDebounce}
	}
	if c.Search.AnalyticsDebounce.Duration == 0 {
		c.Search.AnalyticsDebounce = Duration{defaultAnalyticsDebounce}
	}
	if c.API.Timeout.Duration == 0 {
		c.API.Timeout = Duration{30 * time.Second}
	}
}

// Context returns the caller context described by the configuration.
func (c *Config) Context() core.Context {
	params := make(map[string]string, len(c.Params)+2)
	if c.Organization != nil && c.Organization.Slug != "" {
		params["orgId"] = c.Organization.Slug
	}
	if c.Project != nil && c.Project.Slug != "" {
		params["projectId"] = c.Project.Slug
	}
	for k, v := range c.Params {
		params[k] = v
	}
	return core.Context{
		Params:       params,
		Organization: c.Organization,
		Project:      c.Project,
		Superuser:    c.Search.Superuser,
	}
}

// DBPath returns the sqlite database path inside the storage directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, "cmdk.db")
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/cmdk", storageDir, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "cmdk")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns the configuration directory for cmdk
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "cmdk")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
