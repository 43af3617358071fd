// Package login decides whether the page needs authentication and, if so,
// fills in the login form.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trendsearch/internal/browser"
	"trendsearch/internal/config"
)

// ErrLoginUnverified is returned with a true result when VerifyLogin is
// enabled and the logged-in indicator did not show up after submitting.
var ErrLoginUnverified = errors.New("login submitted but logged-in indicator did not appear")

// Page is what the detector needs from a browser page.
type Page interface {
	Race(ctx context.Context, timeout time.Duration, selectors ...string) (browser.WaitResult, error)
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string, delay time.Duration) error
}

// State is the observed authentication state of the page.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Detector drives the login form when the page asks for it.
type Detector struct {
	page   Page
	cfg    *config.Config
	logger *slog.Logger
}

// NewDetector creates a Detector using the selectors, credentials, delay
// and timeout of cfg.
func NewDetector(page Page, cfg *config.Config, logger *slog.Logger) *Detector {
	return &Detector{page: page, cfg: cfg, logger: logger.With("component", "login")}
}

// Detect races the login trigger against the logged-in indicator. The
// trigger appearing first means Unauthenticated. The indicator appearing
// first, or neither within the timeout, means Authenticated.
func (d *Detector) Detect(ctx context.Context) (State, error) {
	res, err := d.page.Race(ctx, d.cfg.Timeout, d.cfg.LoginSelector, d.cfg.LoggedInSelector)
	if err != nil {
		return Authenticated, fmt.Errorf("failed to detect login state: %w", err)
	}
	if !res.IsFound() {
		d.logger.Warn("login elements not found",
			"login_selector", d.cfg.LoginSelector,
			"logged_in_selector", d.cfg.LoggedInSelector,
			"timeout", d.cfg.Timeout)
		return Authenticated, nil
	}
	if res.Index() == 0 {
		return Unauthenticated, nil
	}
	return Authenticated, nil
}

// Login fills and submits the login form when Detect reports
// Unauthenticated. It returns true when a form was submitted; the caller
// must then reload the page it wants to work on.
func (d *Detector) Login(ctx context.Context) (bool, error) {
	state, err := d.Detect(ctx)
	if err != nil {
		return false, err
	}
	d.logger.Info("login state detected", "state", state)
	if state == Authenticated {
		return false, nil
	}

	d.logger.Info("logging in", "user", d.cfg.Credentials.ID)
	if err := d.page.Click(ctx, d.cfg.LoginSelector); err != nil {
		return false, fmt.Errorf("failed to open login form: %w", err)
	}
	if err := d.page.Type(ctx, d.cfg.UserSelector, d.cfg.Credentials.ID, d.cfg.Delay); err != nil {
		return false, fmt.Errorf("failed to enter user id: %w", err)
	}
	if err := d.page.Type(ctx, d.cfg.PasswordSelector, d.cfg.Credentials.Password, d.cfg.Delay); err != nil {
		return false, fmt.Errorf("failed to enter password: %w", err)
	}
	if err := d.page.Click(ctx, d.cfg.SubmitSelector); err != nil {
		return false, fmt.Errorf("failed to submit login form: %w", err)
	}
	d.logger.Info("login form submitted")

	if !d.cfg.VerifyLogin {
		return true, nil
	}
	res, err := d.page.Race(ctx, d.cfg.Timeout, d.cfg.LoggedInSelector)
	if err != nil {
		return true, fmt.Errorf("failed to verify login: %w", err)
	}
	if !res.IsFound() {
		return true, ErrLoginUnverified
	}
	return true, nil
}
