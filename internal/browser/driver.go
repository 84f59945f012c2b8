// Package browser owns the headless browser process, the persisted login
// session, and the page abstraction the extractors run against.
package browser

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hpungsan/plusblocks/internal/logging"
)

// UserAgents are rotated per page.
var UserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// DriverOptions configures a Driver.
type DriverOptions struct {
	NavigationTimeout time.Duration
	// SettleAfter is the DOM stability window awaited after each navigation.
	SettleAfter time.Duration
	Logger      logging.Logger
}

// Driver owns the shared headless browser. It launches lazily, relaunches
// after a disconnect, and is closed explicitly by its owner.
type Driver struct {
	resolver *Resolver
	opts     DriverOptions
	logger   logging.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewDriver creates a driver that launches the executable found by resolver.
func NewDriver(resolver *Resolver, opts DriverOptions) *Driver {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.SettleAfter <= 0 {
		opts.SettleAfter = 500 * time.Millisecond
	}
	return &Driver{
		resolver: resolver,
		opts:     opts,
		logger:   logging.OrDiscard(opts.Logger),
	}
}

// Acquire returns the shared browser, launching it if needed.
func (d *Driver) Acquire(ctx context.Context) (*rod.Browser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser != nil {
		if _, err := d.browser.Version(); err == nil {
			return d.browser, nil
		}
		d.logger.Warn("shared browser disconnected; relaunching")
		d.closeLocked()
	}

	bin, err := d.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	// Not bound to ctx: the shared browser outlives the request that launched it.
	l := launcher.New().
		Bin(bin).
		Headless(true).
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage")
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	d.browser, d.launcher = b, l
	d.logger.WithField("bin", bin).Debug("browser launched")
	return b, nil
}

// Connected reports whether a live shared browser exists.
func (d *Driver) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.browser == nil {
		return false
	}
	_, err := d.browser.Version()
	return err == nil
}

// Close shuts down the shared browser. It is safe to call when nothing is running.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeLocked()
}

func (d *Driver) closeLocked() error {
	if d.browser == nil {
		return nil
	}
	err := d.browser.Close()
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}
	d.browser, d.launcher = nil, nil
	return err
}

// Recycle closes the browser and pauses, releasing memory held by long runs.
// The next Acquire launches a fresh process.
func (d *Driver) Recycle(ctx context.Context, pause time.Duration) error {
	if err := d.Close(); err != nil {
		d.logger.WithError(err).Warn("close during recycle")
	}
	if pause <= 0 {
		return nil
	}
	t := time.NewTimer(pause)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewPage opens a stealth tab with a rotated user agent and a desktop viewport.
func (d *Driver) NewPage(ctx context.Context) (Page, error) {
	b, err := d.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: RandomUserAgent()}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return &rodPage{page: page, navTimeout: d.opts.NavigationTimeout, settleAfter: d.opts.SettleAfter}, nil
}

// RandomUserAgent picks one of UserAgents.
func RandomUserAgent() string {
	return UserAgents[rand.IntN(len(UserAgents))]
}
