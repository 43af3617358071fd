// Package browser wraps go-rod: launching the browser process and the page
// operations the rest of trendsearch needs.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config controls how the browser process is launched.
type Config struct {
	Headless   bool
	SlowMotion time.Duration
	ProxyURL   string
}

// Browser owns one launched browser process and its rod connection.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	proxyURL string
}

// New launches a browser process and connects to it.
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)

	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if cfg.SlowMotion > 0 {
		browser = browser.SlowMotion(cfg.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	b := &Browser{
		browser:  browser,
		launcher: l,
		proxyURL: cfg.ProxyURL,
	}

	return b, nil
}

// ProxyURL returns the proxy the browser was launched with.
func (b *Browser) ProxyURL() string {
	return b.proxyURL
}

// NewPage opens a blank page bound to ctx. timeout bounds every
// navigation and element lookup made through the returned Page.
func (b *Browser) NewPage(ctx context.Context, timeout time.Duration) (*Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &Page{page: page.Context(ctx), browser: b.browser, timeout: timeout}, nil
}

// Close disconnects and kills the browser process. The process is killed
// even when the graceful close fails.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return err
}
