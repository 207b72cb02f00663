package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/core/config"
	"github.com/abdul-hamid-achik/stripcheck/packages/logger"
	"github.com/playwright-community/playwright-go"
)

// Options configures a browser session
type Options struct {
	BaseURL      string
	ArtifactsDir string
	Headless     bool
	SlowMo       time.Duration
	Timeout      time.Duration
	Width        int
	Height       int
	StubRoutes   []string
	IgnoreErrors []string
	// Install downloads the driver and Chromium before starting
	Install bool
	Logger  logger.Logger
}

// OptionsFromConfig maps the run configuration onto session options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:      cfg.BaseURL,
		ArtifactsDir: cfg.ArtifactsDir,
		Headless:     cfg.GetHeadless(),
		SlowMo:       time.Duration(cfg.SlowMo) * time.Millisecond,
		Timeout:      cfg.ActionTimeout(),
		Width:        cfg.Viewport.Width,
		Height:       cfg.Viewport.Height,
		StubRoutes:   cfg.StubRoutes,
		IgnoreErrors: cfg.IgnoreErrors,
	}
}

// Session is one browser, context and page shared by every scenario
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	monitor *Monitor
	opts    Options
	log     logger.Logger
}

// Launch starts Playwright and opens a page with route stubs and error monitoring in place
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	if err := os.MkdirAll(opts.ArtifactsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifacts directory: %w", err)
	}

	runOpts := &playwright.RunOptions{Browsers: []string{"chromium"}}
	if opts.Install {
		log.Info("installing playwright driver and chromium")
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	s := &Session{
		pw:      pw,
		monitor: NewMonitor(opts.IgnoreErrors),
		opts:    opts,
		log:     log,
	}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not create context: %w", err)
	}

	s.page, err = s.context.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	if opts.Timeout > 0 {
		s.page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	for _, pattern := range opts.StubRoutes {
		if err := s.page.Route(pattern, fulfillEmptyScript); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("could not stub route %s: %w", pattern, err)
		}
	}
	s.monitor.Attach(s.page)

	log.Debug("browser session ready",
		"headless", opts.Headless,
		"viewport", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"stub_routes", len(opts.StubRoutes))

	return s, nil
}

func fulfillEmptyScript(route playwright.Route) {
	_ = route.Fulfill(playwright.RouteFulfillOptions{
		Status:      playwright.Int(200),
		ContentType: playwright.String("application/javascript"),
		Body:        "",
	})
}

// Page returns the underlying page; it satisfies storage.Evaluator
func (s *Session) Page() playwright.Page {
	return s.page
}

// Monitor returns the session's error monitor
func (s *Session) Monitor() *Monitor {
	return s.monitor
}

// ResetErrors clears errors collected so far
func (s *Session) ResetErrors() {
	s.monitor.Reset()
}

// PageErrors returns errors collected since the last reset
func (s *Session) PageErrors() []string {
	return s.monitor.Errors()
}

// Screenshot writes <name>.png into the artifacts directory and returns its path
func (s *Session) Screenshot(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.opts.ArtifactsDir, name+".png")
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", Classify("screenshot", name, err)
	}
	return path, nil
}

// Close releases the page, context, browser and driver
func (s *Session) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
	}
	if s.context != nil {
		errs = append(errs, s.context.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}
