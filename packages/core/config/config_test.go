package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.True(t, cfg.GetHeadless())
	assert.False(t, cfg.GetNoColor())
	assert.Equal(t, filepath.Join(DefaultArtifactsDir, DefaultHistoryFile), cfg.GetHistoryDB())
	assert.Empty(t, cfg.Selectors.Missing())
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "", cfg.Source())
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stripcheck.yaml")
	content := `base_url: http://127.0.0.1:9000/
headless: false
timeout_ms: 8000
storage:
  movements_key: custom_movements
selectors:
  badge: .fmn-badge
ignore_errors:
  - favicon
history_db: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source())
	assert.Equal(t, "http://127.0.0.1:9000/", cfg.BaseURL)
	assert.False(t, cfg.GetHeadless())
	assert.Equal(t, 8000, cfg.Timeout)
	assert.Equal(t, 3000, cfg.SettleTimeout, "unset values keep defaults")
	assert.Equal(t, "custom_movements", cfg.Storage.MovementsKey)
	assert.Equal(t, DefaultBookingsKey, cfg.Storage.BookingsKey)
	assert.Equal(t, ".fmn-badge", cfg.Selectors.Badge)
	assert.Equal(t, DefaultSelectors().Strip, cfg.Selectors.Strip)
	assert.Equal(t, []string{"favicon"}, cfg.IgnoreErrors)
	assert.Equal(t, "", cfg.GetHistoryDB(), "explicit empty history_db disables history")
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stripcheck.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"baseUrl": "https://strips.example.test/", "settleTimeout": 1500}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://strips.example.test/", cfg.BaseURL)
	assert.Equal(t, 1500, cfg.SettleTimeout)
}

func TestLoadConfig_ExpandsEnvironment(t *testing.T) {
	t.Setenv("STRIPCHECK_TEST_PORT", "8123")
	dir := t.TempDir()
	path := filepath.Join(dir, "stripcheck.yml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://localhost:${STRIPCHECK_TEST_PORT}/\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8123/", cfg.BaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stripcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [unterminated\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
		{"non http base url", func(c *Config) { c.BaseURL = "file:///tmp/index.html" }},
		{"empty artifacts dir", func(c *Config) { c.ArtifactsDir = "" }},
		{"empty storage key", func(c *Config) { c.Storage.BookingsKey = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"missing selector", func(c *Config) { c.Selectors.Badge = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSelectors(t *testing.T) {
	sel := DefaultSelectors()
	assert.Equal(t, `tr.strip[data-id="42"]`, sel.StripFor(42))

	merged := sel.Merge(Selectors{Badge: ".other"})
	assert.Equal(t, ".other", merged.Badge)
	assert.Equal(t, sel.Strip, merged.Strip)

	empty := Selectors{}
	missing := empty.Missing()
	assert.Contains(t, missing, "badge")
	assert.Contains(t, missing, "duplicate_button")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stripcheck.yaml")

	cfg := DefaultConfig()
	cfg.BaseURL = "http://localhost:8099/"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8099/", loaded.BaseURL)
	assert.Equal(t, cfg.Selectors, loaded.Selectors)
}
