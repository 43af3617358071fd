package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ErrNoSelectors is returned by Race when called without selectors.
var ErrNoSelectors = errors.New("no selectors to wait for")

// Page is the single page a run drives. Every method blocks until the
// page operation completes.
type Page struct {
	page    *rod.Page
	browser *rod.Browser
	// timeout bounds navigations and element lookups
	timeout time.Duration
}

// Race waits up to timeout for any of selectors to appear and reports the
// first match. An expired deadline is a TimedOut result, not an error.
func (p *Page) Race(ctx context.Context, timeout time.Duration, selectors ...string) (WaitResult, error) {
	if len(selectors) == 0 {
		return WaitResult{}, ErrNoSelectors
	}

	page := p.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	matched := -1
	race := page.Race()
	for i, sel := range selectors {
		race = race.Element(sel).Handle(func(*rod.Element) error {
			matched = i
			return nil
		})
	}

	if _, err := race.Do(); err != nil {
		if waitExpired(ctx, err) {
			return TimedOut(), nil
		}
		return WaitResult{}, fmt.Errorf("failed to wait for %v: %w", selectors, err)
	}
	return Found(matched, selectors[matched]), nil
}

// waitExpired reports whether err is the wait's own deadline rather than
// the caller's context ending or a browser failure.
func waitExpired(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

// WaitFor is Race with a single selector.
func (p *Page) WaitFor(ctx context.Context, timeout time.Duration, selector string) (WaitResult, error) {
	return p.Race(ctx, timeout, selector)
}

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx).Timeout(p.timeout)
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// Click clicks the first element matching selector.
func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Type enters text into the element matching selector one character at a
// time, pausing delay after each.
func (p *Page) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			return fmt.Errorf("failed to type into %s: %w", selector, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

// element finds selector within the page timeout. The returned element is
// bound to ctx only, so later actions are not cut short by the lookup
// deadline.
func (p *Page) element(ctx context.Context, selector string) (*rod.Element, error) {
	page := p.page.Context(ctx).Timeout(p.timeout)
	defer page.CancelTimeout()

	el, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", selector, err)
	}
	return el.Context(ctx), nil
}

// EvalInto runs the JavaScript function js with args and decodes its JSON
// result into out.
func (p *Page) EvalInto(ctx context.Context, out any, js string, args ...any) error {
	page := p.page.Context(ctx).Timeout(p.timeout)
	defer page.CancelTimeout()

	res, err := page.Eval(js, args...)
	if err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode script result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse script result: %w", err)
	}
	return nil
}

// AddScriptOnNewDocument runs js in every document loaded from now on.
func (p *Page) AddScriptOnNewDocument(ctx context.Context, js string) error {
	if _, err := p.page.Context(ctx).EvalOnNewDocument(js); err != nil {
		return fmt.Errorf("failed to add init script: %w", err)
	}
	return nil
}

// Cookies returns every cookie of the browser.
func (p *Page) Cookies(ctx context.Context) ([]*proto.NetworkCookie, error) {
	cookies, err := p.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}
	return cookies, nil
}

// SetCookies adds cookies to the browser. An empty list is a no-op; rod
// would otherwise clear every cookie.
func (p *Page) SetCookies(ctx context.Context, cookies []*proto.NetworkCookie) error {
	if len(cookies) == 0 {
		return nil
	}
	if err := p.browser.Context(ctx).SetCookies(proto.CookiesToParams(cookies)); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// URL returns the address of the current document.
func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to get page info: %w", err)
	}
	return info.URL, nil
}

// Screenshot writes a PNG of the viewport to path, creating its directory.
func (p *Page) Screenshot(ctx context.Context, path string) error {
	data, err := p.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// Close closes the page.
func (p *Page) Close() error {
	return p.page.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
