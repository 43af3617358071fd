// Package runner wires a full trendsearch run: restore the session, search,
// log in if asked to, harvest trend words and save the session again.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trendsearch/internal/browser"
	"trendsearch/internal/config"
	"trendsearch/internal/harvest"
	"trendsearch/internal/login"
	"trendsearch/internal/search"
	"trendsearch/internal/session"
	"trendsearch/internal/trend"

	"github.com/google/uuid"
)

// screenshotTimeout bounds the diagnostic screenshot taken after a failure.
const screenshotTimeout = 10 * time.Second

// Page is everything a run does with the browser page.
type Page interface {
	login.Page
	trend.Page
	search.Navigator
	session.Target
	Screenshot(ctx context.Context, path string) error
}

// Run launches the browser, executes one run and releases the browser on
// every path.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("run_id", uuid.NewString())

	state := session.Load(cfg.StorageStatePath)
	logger.Info("session state loaded",
		"state_path", cfg.StorageStatePath,
		"restored", !state.Empty())

	b, err := browser.New(browser.Config{
		Headless:   cfg.Headless,
		SlowMotion: cfg.SlowMotion,
		ProxyURL:   cfg.ProxyURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	defer func() {
		logger.Info("closing browser")
		if err := b.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	page, err := b.NewPage(ctx, cfg.NavigationTimeout)
	if err != nil {
		return err
	}
	defer page.Close()

	return Execute(ctx, cfg, page, state, logger)
}

// Execute runs the search session on page. When it fails a screenshot is
// written to cfg.ScreenshotPath before the error is returned.
func Execute(ctx context.Context, cfg *config.Config, page Page, state *session.State, logger *slog.Logger) error {
	err := execute(ctx, cfg, page, state, logger)
	if err == nil {
		return nil
	}

	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
	defer cancel()
	if shotErr := page.Screenshot(shotCtx, cfg.ScreenshotPath); shotErr != nil {
		logger.Error("failed to save screenshot", "error", shotErr)
	} else {
		logger.Info("screenshot saved", "path", cfg.ScreenshotPath)
	}
	logger.Error("run failed", "error", err)
	return err
}

func execute(ctx context.Context, cfg *config.Config, page Page, state *session.State, logger *slog.Logger) error {
	if err := session.Apply(ctx, page, state); err != nil {
		logger.Warn("failed to restore session state", "error", err)
	}

	searcher := search.New(page, cfg, logger)
	if err := searcher.Search(ctx, cfg.InitialQuery); err != nil {
		return err
	}

	loggedIn, err := login.NewDetector(page, cfg, logger).Login(ctx)
	if errors.Is(err, login.ErrLoginUnverified) {
		logger.Warn("login could not be verified, continuing", "error", err)
		err = nil
	}
	if err != nil {
		return err
	}
	if loggedIn {
		if err := page.Navigate(ctx, cfg.PageURL); err != nil {
			return fmt.Errorf("failed to reload page after login: %w", err)
		}
	}

	scraper := trend.NewScraper(page, cfg, logger)
	res, err := harvest.NewLoop(scraper, searcher.Search, harvest.DefaultTarget, logger).Run(ctx, cfg.SearchWords)
	if err != nil {
		return err
	}
	logger.Info("searches finished",
		"searched", len(res.Searched),
		"exhausted", res.Exhausted)

	final, err := session.Capture(ctx, page, state)
	if err != nil {
		return fmt.Errorf("failed to capture session state: %w", err)
	}
	if err := session.Save(cfg.StorageStatePath, final); err != nil {
		return err
	}
	logger.Info("session state saved", "state_path", cfg.StorageStatePath, "cookie_count", len(final.Cookies))
	return nil
}
