// Package trend scrapes the trending search terms a page renders.
package trend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trendsearch/internal/browser"
	"trendsearch/internal/config"

	"github.com/PuerkitoBio/goquery"
)

// Page is what the scraper needs from a browser page.
type Page interface {
	WaitFor(ctx context.Context, timeout time.Duration, selector string) (browser.WaitResult, error)
	EvalInto(ctx context.Context, out any, js string, args ...any) error
}

// snapshotJS copies the live value of matching inputs into their value
// attribute, then returns the serialized document.
const snapshotJS = `(sel) => {
	document.querySelectorAll(sel).forEach(e => {
		if (e instanceof HTMLInputElement) e.setAttribute('value', e.value);
	});
	return document.documentElement.outerHTML;
}`

// Scraper reads trend words from a page.
type Scraper struct {
	page     Page
	selector string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewScraper uses cfg.TrendSelector and cfg.Timeout.
func NewScraper(page Page, cfg *config.Config, logger *slog.Logger) *Scraper {
	return &Scraper{
		page:     page,
		selector: cfg.TrendSelector,
		timeout:  cfg.Timeout,
		logger:   logger.With("component", "trend"),
	}
}

// TrendWords waits for at least one trend element and returns the words
// currently rendered. When none appears within the timeout it returns no
// words and no error.
func (s *Scraper) TrendWords(ctx context.Context) ([]string, error) {
	res, err := s.page.WaitFor(ctx, s.timeout, s.selector)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for trend words: %w", err)
	}
	if !res.IsFound() {
		s.logger.Warn("no trend words found", "selector", s.selector, "timeout", s.timeout)
		return nil, nil
	}

	var html string
	if err := s.page.EvalInto(ctx, &html, snapshotJS, s.selector); err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}

	words, err := Extract(html, s.selector)
	if err != nil {
		return nil, err
	}
	s.logger.Info("trend words", "words", words)
	return words, nil
}

// Extract returns the words of the elements in html matching selector, in
// document order. Inputs yield their value attribute as is, other elements
// their trimmed text. Empty words are skipped.
func Extract(html, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}

	var words []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		var word string
		if goquery.NodeName(sel) == "input" {
			word, _ = sel.Attr("value")
		} else {
			word = strings.TrimSpace(sel.Text())
		}
		if word != "" {
			words = append(words, word)
		}
	})
	return words, nil
}
