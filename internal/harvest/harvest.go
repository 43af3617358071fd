// Package harvest runs the search loop: scrape trend words, pick the next
// unseen term, search it, until enough distinct terms were searched or no
// candidate is left.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultTarget is the number of distinct terms a run searches.
const DefaultTarget = 10

// Scraper returns the trend words currently on the page. A page without
// trend words yields an empty slice and no error.
type Scraper interface {
	TrendWords(ctx context.Context) ([]string, error)
}

// SearchFunc searches term and returns once the results have loaded.
type SearchFunc func(ctx context.Context, term string) error

// Result describes a finished loop.
type Result struct {
	// Searched lists the consumed terms in search order.
	Searched []string
	// Remaining is the candidate queue left when the loop stopped.
	Remaining []string
	// Exhausted is true when the loop stopped for lack of candidates.
	Exhausted bool
}

// Loop is the trend harvest loop.
type Loop struct {
	scraper Scraper
	search  SearchFunc
	target  int
	logger  *slog.Logger
}

// NewLoop creates a Loop that stops after target distinct searches.
// A target below 1 means DefaultTarget.
func NewLoop(scraper Scraper, search SearchFunc, target int, logger *slog.Logger) *Loop {
	if target < 1 {
		target = DefaultTarget
	}
	return &Loop{scraper: scraper, search: search, target: target, logger: logger.With("component", "harvest")}
}

// Run searches terms starting from seeds. Each iteration merges freshly
// scraped words into the queue and searches the most recently added
// unseen term. On error the partial result is returned alongside it.
func (l *Loop) Run(ctx context.Context, seeds []string) (*Result, error) {
	history := NewWordSet()
	queue := append([]string(nil), seeds...)
	res := &Result{}

	finish := func() *Result {
		res.Searched = history.Words()
		res.Remaining = queue
		return res
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		scraped, err := l.scraper.TrendWords(ctx)
		if err != nil {
			return finish(), fmt.Errorf("failed to scrape trend words: %w", err)
		}

		queue = Merge(queue, scraped, history)
		if len(queue) == 0 {
			l.logger.Warn("word is empty, stopping", "consumed", history.Len())
			res.Exhausted = true
			break
		}

		word := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if err := l.search(ctx, word); err != nil {
			return finish(), err
		}
		history.Add(word)
		l.logger.Debug("searched", "word", word, "consumed", history.Words(), "queue", queue)

		if history.Len() >= l.target {
			break
		}
	}

	l.logger.Info("consumed search words", "count", history.Len())
	return finish(), nil
}

// Merge returns queue followed by scraped, keeping the first occurrence of
// each word and dropping blanks and words already in history.
func Merge(queue, scraped []string, history *WordSet) []string {
	seen := make(map[string]struct{}, len(queue)+len(scraped))
	out := make([]string, 0, len(queue)+len(scraped))
	for _, list := range [][]string{queue, scraped} {
		for _, w := range list {
			if w == "" || history.Has(w) {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
