package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scraperFunc adapts a function to Scraper.
type scraperFunc func(call int) ([]string, error)

type countingScraper struct {
	fn    scraperFunc
	calls int
}

func (s *countingScraper) TrendWords(context.Context) ([]string, error) {
	s.calls++
	return s.fn(s.calls)
}

func scrapes(batches ...[]string) *countingScraper {
	return &countingScraper{fn: func(call int) ([]string, error) {
		if call <= len(batches) {
			return batches[call-1], nil
		}
		return nil, nil
	}}
}

type searchRecorder struct {
	terms []string
	err   error
}

func (r *searchRecorder) search(_ context.Context, term string) error {
	if r.err != nil {
		return r.err
	}
	r.terms = append(r.terms, term)
	return nil
}

func newLoop(s Scraper, r *searchRecorder) *Loop {
	return NewLoop(s, r.search, DefaultTarget, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_StopsAtTarget(t *testing.T) {
	t.Parallel()

	scraper := &countingScraper{fn: func(call int) ([]string, error) {
		return []string{fmt.Sprintf("trend-%d", call)}, nil
	}}
	rec := &searchRecorder{}

	res, err := newLoop(scraper, rec).Run(context.Background(), []string{"seed"})
	require.NoError(t, err)

	assert.Len(t, rec.terms, DefaultTarget)
	assert.Equal(t, DefaultTarget, scraper.calls)
	assert.False(t, res.Exhausted)
	assert.Equal(t, rec.terms, res.Searched)
	// freshly scraped words always win, so the seed is never reached
	assert.Equal(t, []string{"seed"}, res.Remaining)
}

func TestRun_ExhaustsSeeds(t *testing.T) {
	t.Parallel()

	rec := &searchRecorder{}
	res, err := newLoop(scrapes(), rec).Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, rec.terms)
	assert.True(t, res.Exhausted)
	assert.Empty(t, res.Remaining)
}

func TestRun_SingleSeedNoTrends(t *testing.T) {
	t.Parallel()

	scraper := scrapes()
	rec := &searchRecorder{}
	res, err := newLoop(scraper, rec).Run(context.Background(), []string{"today"})
	require.NoError(t, err)

	assert.Equal(t, []string{"today"}, rec.terms)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 2, scraper.calls)
}

func TestRun_PrefersFreshTrends(t *testing.T) {
	t.Parallel()

	rec := &searchRecorder{}
	_, err := newLoop(scrapes([]string{"c"}), rec).Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	require.NotEmpty(t, rec.terms)
	assert.Equal(t, "c", rec.terms[0])
	assert.Equal(t, []string{"c", "b", "a"}, rec.terms)
}

func TestRun_NeverRepeats(t *testing.T) {
	t.Parallel()

	scraper := &countingScraper{fn: func(int) ([]string, error) {
		return []string{"x", "y", "", "x"}, nil
	}}
	rec := &searchRecorder{}
	res, err := newLoop(scraper, rec).Run(context.Background(), []string{"x", "z"})
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "z", "x"}, rec.terms)
	assert.Len(t, res.Searched, len(rec.terms))
	seen := map[string]bool{}
	for _, term := range rec.terms {
		assert.False(t, seen[term], "searched %q twice", term)
		seen[term] = true
	}
	assert.True(t, res.Exhausted)
}

func TestRun_ScrapeError(t *testing.T) {
	t.Parallel()

	boom := errors.New("target crashed")
	scraper := &countingScraper{fn: func(call int) ([]string, error) {
		if call == 2 {
			return nil, boom
		}
		return nil, nil
	}}
	rec := &searchRecorder{}

	res, err := newLoop(scraper, rec).Run(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"b"}, res.Searched)
	assert.Equal(t, []string{"a"}, res.Remaining)
}

func TestRun_SearchError(t *testing.T) {
	t.Parallel()

	boom := errors.New("navigation failed")
	rec := &searchRecorder{err: boom}

	res, err := newLoop(scrapes(), rec).Run(context.Background(), []string{"a"})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, res.Searched)
}

func TestRun_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := scrapes([]string{"a"})
	_, err := newLoop(scraper, &searchRecorder{}).Run(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, scraper.calls)
}

func TestNewLoop_DefaultTarget(t *testing.T) {
	t.Parallel()

	l := NewLoop(scrapes(), nil, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, DefaultTarget, l.target)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	history := NewWordSet()
	history.Add("old")

	tests := []struct {
		name    string
		queue   []string
		scraped []string
		want    []string
	}{
		{name: "empty", want: []string{}},
		{name: "union keeps order", queue: []string{"a", "b"}, scraped: []string{"c"}, want: []string{"a", "b", "c"}},
		{name: "dedupes across lists", queue: []string{"a", "b"}, scraped: []string{"b", "a", "d"}, want: []string{"a", "b", "d"}},
		{name: "drops history and blanks", queue: []string{"old", ""}, scraped: []string{"new", "old"}, want: []string{"new"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Merge(tt.queue, tt.scraped, history))
		})
	}
}

func TestWordSet(t *testing.T) {
	t.Parallel()

	s := NewWordSet()
	assert.True(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, 2, s.Len())

	words := s.Words()
	words[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, s.Words())
}
