package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SlowMo = 250
	cfg.Headless = config.BoolPtr(false)

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, config.DefaultBaseURL, opts.BaseURL)
	assert.False(t, opts.Headless)
	assert.Equal(t, 250*time.Millisecond, opts.SlowMo)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 1440, opts.Width)
	assert.Equal(t, 900, opts.Height)
	assert.Equal(t, []string{"**/xlsx*.js"}, opts.StubRoutes)
	assert.Equal(t, config.DefaultIgnoreErrors, opts.IgnoreErrors)
}

func TestLaunch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Launch(ctx, Options{ArtifactsDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestSession_Smoke needs a Chromium install and a reachable page, so it
// only runs when STRIPCHECK_BROWSER_TESTS=1.
func TestSession_Smoke(t *testing.T) {
	if os.Getenv("STRIPCHECK_BROWSER_TESTS") != "1" {
		t.Skip("set STRIPCHECK_BROWSER_TESTS=1 to run browser tests")
	}

	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><body>
<div id="stripBoard"><span class="badge-formation">FMN 3</span></div>
<select id="newWtc"><option value="L">L</option><option value="M">M</option></select>
<script>console.error("boom")</script>
</body></html>`), 0644))

	opts := OptionsFromConfig(config.DefaultConfig())
	opts.BaseURL = "file://" + page
	opts.ArtifactsDir = filepath.Join(dir, "artifacts")
	opts.Timeout = 2 * time.Second

	ctx := context.Background()
	s, err := Launch(ctx, opts)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.WaitVisible(ctx, "#stripBoard"))

	text, err := s.Text(ctx, ".badge-formation")
	require.NoError(t, err)
	assert.Contains(t, text, "3")

	require.NoError(t, s.Select(ctx, "#newWtc", "M"))
	value, err := s.Value(ctx, "#newWtc")
	require.NoError(t, err)
	assert.Equal(t, "M", value)

	n, err := s.Count(ctx, ".missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	err = s.WaitVisible(ctx, "#editModal")
	assert.ErrorIs(t, err, runner.ErrNotReached)

	assert.Equal(t, []string{"console: boom"}, s.PageErrors())

	ref, err := s.Screenshot(ctx, "F0")
	require.NoError(t, err)
	assert.FileExists(t, ref)
}
