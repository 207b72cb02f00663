package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the stripcheck configuration
type Config struct {
	BaseURL       string    `json:"baseUrl,omitempty" yaml:"base_url,omitempty"`
	ArtifactsDir  string    `json:"artifactsDir,omitempty" yaml:"artifacts_dir,omitempty"`
	Headless      *bool     `json:"headless,omitempty" yaml:"headless,omitempty"`
	SlowMo        int       `json:"slowMo,omitempty" yaml:"slow_mo_ms,omitempty"`               // milliseconds
	Timeout       int       `json:"timeout,omitempty" yaml:"timeout_ms,omitempty"`              // milliseconds, per UI action
	SettleTimeout int       `json:"settleTimeout,omitempty" yaml:"settle_timeout_ms,omitempty"` // milliseconds, per explicit wait
	Viewport      Viewport  `json:"viewport,omitempty" yaml:"viewport,omitempty"`
	Storage       Storage   `json:"storage,omitempty" yaml:"storage,omitempty"`
	StubRoutes    []string  `json:"stubRoutes,omitempty" yaml:"stub_routes,omitempty"`     // URL globs fulfilled with an empty script
	IgnoreErrors  []string  `json:"ignoreErrors,omitempty" yaml:"ignore_errors,omitempty"` // console error substrings to ignore
	Selectors     Selectors `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	Reporters     []string  `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	HistoryDB     *string   `json:"historyDb,omitempty" yaml:"history_db,omitempty"`
	NoColor       *bool     `json:"noColor,omitempty" yaml:"no_color,omitempty"`
	Verbose       *bool     `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	// path the config was loaded from, empty for defaults
	source string
}

// Viewport is the browser window size
type Viewport struct {
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
}

// Storage names the localStorage keys the application persists to
type Storage struct {
	MovementsKey string `json:"movementsKey,omitempty" yaml:"movements_key,omitempty"`
	BookingsKey  string `json:"bookingsKey,omitempty" yaml:"bookings_key,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetHeadless returns the headless setting, defaulting to true
func (c *Config) GetHeadless() bool {
	return getBool(c.Headless, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetHistoryDB returns the history database path. An explicit empty string disables history.
func (c *Config) GetHistoryDB() string {
	if c.HistoryDB == nil {
		return filepath.Join(c.ArtifactsDir, DefaultHistoryFile)
	}
	return *c.HistoryDB
}

// ActionTimeout returns the per-action timeout
func (c *Config) ActionTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// SettleDuration returns the bound for explicit waits after UI actions
func (c *Config) SettleDuration() time.Duration {
	return time.Duration(c.SettleTimeout) * time.Millisecond
}

// Source returns the file the config was loaded from, or "" when defaults are in use
func (c *Config) Source() string {
	return c.source
}

// Validate reports configuration that cannot drive a run
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.ArtifactsDir == "" {
		return fmt.Errorf("artifacts_dir is required")
	}
	if c.Storage.MovementsKey == "" || c.Storage.BookingsKey == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if c.Timeout <= 0 || c.SettleTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if missing := c.Selectors.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing selectors: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	"stripcheck.yaml",
	"stripcheck.yml",
	".stripcheck.yaml",
	"stripcheck.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. Values
// in the file are merged over the defaults.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	fileConfig := &Config{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, fileConfig); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, fileConfig); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	config := DefaultConfig().Merge(fileConfig)
	config.source = path
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.ArtifactsDir != "" {
		result.ArtifactsDir = other.ArtifactsDir
	}
	if other.SlowMo > 0 {
		result.SlowMo = other.SlowMo
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.SettleTimeout > 0 {
		result.SettleTimeout = other.SettleTimeout
	}
	if other.Viewport.Width > 0 {
		result.Viewport.Width = other.Viewport.Width
	}
	if other.Viewport.Height > 0 {
		result.Viewport.Height = other.Viewport.Height
	}
	if other.Storage.MovementsKey != "" {
		result.Storage.MovementsKey = other.Storage.MovementsKey
	}
	if other.Storage.BookingsKey != "" {
		result.Storage.BookingsKey = other.Storage.BookingsKey
	}

	// Pointer fields - only override if explicitly set in other config
	if other.Headless != nil {
		result.Headless = other.Headless
	}
	if other.HistoryDB != nil {
		result.HistoryDB = other.HistoryDB
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}

	// Lists replace rather than append
	if len(other.StubRoutes) > 0 {
		result.StubRoutes = other.StubRoutes
	}
	if len(other.IgnoreErrors) > 0 {
		result.IgnoreErrors = other.IgnoreErrors
	}
	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	result.Selectors = c.Selectors.Merge(other.Selectors)

	return &result
}

// SaveConfig saves the configuration to a file, as JSON for .json paths and YAML otherwise
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
