// Package search issues searches by loading the base page with the term
// appended.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"trendsearch/internal/config"
)

// Navigator loads a URL and waits for it to finish loading.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Searcher runs searches against cfg.PageURL.
type Searcher struct {
	page    Navigator
	baseURL string
	escape  func(string) string
	logger  *slog.Logger
}

// New creates a Searcher. Terms are query-escaped when cfg.PageURL ends
// in a query ("?q=") and path-escaped otherwise ("/search/").
func New(page Navigator, cfg *config.Config, logger *slog.Logger) *Searcher {
	escape := url.PathEscape
	if strings.Contains(cfg.PageURL, "?") {
		escape = url.QueryEscape
	}
	return &Searcher{
		page:    page,
		baseURL: cfg.PageURL,
		escape:  escape,
		logger:  logger.With("component", "search"),
	}
}

// URL is the address searched for term.
func (s *Searcher) URL(term string) string {
	return s.baseURL + s.escape(term)
}

// Search navigates to the results of term and returns once they loaded.
func (s *Searcher) Search(ctx context.Context, term string) error {
	s.logger.Info("run search", "word", term)
	if err := s.page.Navigate(ctx, s.URL(term)); err != nil {
		return fmt.Errorf("failed to search %q: %w", term, err)
	}
	return nil
}
