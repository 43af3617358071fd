package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"trendsearch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	urls []string
	err  error
}

func (r *recorder) Navigate(_ context.Context, u string) error {
	r.urls = append(r.urls, u)
	return r.err
}

func newSearcher(nav Navigator) *Searcher {
	cfg := config.NewConfig()
	cfg.PageURL = "https://example.com/search?q="
	return New(nav, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := newSearcher(rec)

	require.NoError(t, s.Search(context.Background(), "today"))
	require.NoError(t, s.Search(context.Background(), "go & rust"))

	assert.Equal(t, []string{
		"https://example.com/search?q=today",
		"https://example.com/search?q=go+%26+rust",
	}, rec.urls)
}

func TestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		term string
		want string
	}{
		{name: "query base", base: "https://example.com/search?q=", term: "go rust/zig", want: "https://example.com/search?q=go+rust%2Fzig"},
		{name: "query after other params", base: "https://example.com/s?lang=en&q=", term: "a b", want: "https://example.com/s?lang=en&q=a+b"},
		{name: "path base", base: "https://example.com/search/", term: "go rust/zig", want: "https://example.com/search/go%20rust%2Fzig"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.PageURL = tt.base
			s := New(&recorder{}, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			assert.Equal(t, tt.want, s.URL(tt.term))
		})
	}
}

func TestSearch_Error(t *testing.T) {
	t.Parallel()

	s := newSearcher(&recorder{err: errors.New("net::ERR_NAME_NOT_RESOLVED")})
	err := s.Search(context.Background(), "today")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"today"`)
}
