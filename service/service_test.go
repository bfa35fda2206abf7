package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
)

func TestParseGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{"Drama"}},
		{in: "N/A", want: []string{"Drama"}},
		{in: " , ", want: []string{"Drama"}},
		{in: "Crime, Drama", want: []string{"Crime", "Drama"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGenres(tt.in))
		})
	}
}

func TestParseCast(t *testing.T) {
	assert.Empty(t, ParseCast("N/A"))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ParseCast("a, b, c, d, e, f, g"))
}

func TestSafeInt(t *testing.T) {
	tests := map[string]int{
		"1999":      1999,
		"1999–2003": 1999,
		"N/A":       0,
		"":          0,
		"c. 1920s":  1920,
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeInt(in), in)
	}
}

func TestHTTPMetadata_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		if r.URL.Query().Get("t") != "Yi Yi" {
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
			return
		}
		assert.Equal(t, "2000", r.URL.Query().Get("y"))
		_, _ = w.Write([]byte(`{
			"Response":"True","Title":"Yi Yi","Year":"2000","Director":"Edward Yang",
			"Actors":"Nien-Jen Wu, Elaine Jin, Issei Ogata","Genre":"Drama, Romance",
			"Plot":"Each member of a family...","Runtime":"173 min","imdbID":"tt0244316","Poster":"N/A"
		}`))
	}))
	defer srv.Close()

	m := NewHTTPMetadata(srv.URL, WithAPIKey("secret"), WithTimeout(time.Second))
	f, err := m.Lookup(context.Background(), "Yi Yi", 2000)
	require.NoError(t, err)
	assert.Equal(t, "yi-yi", f.Slug)
	assert.Equal(t, 2000, f.Year)
	assert.Equal(t, "Edward Yang", f.Director)
	assert.Equal(t, []string{"Drama", "Romance"}, f.Genres)
	assert.Len(t, f.Cast, 3)
	assert.Equal(t, SourceOMDb, f.Source)

	f, err = m.Lookup(context.Background(), "Nope", 0)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, f.Source)
	assert.Equal(t, "nope", f.ID())
}

func TestHTTPScorer_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"dimensional_scores":{"pacing_pace":2,"visual_color":6},"core_essence":"patient grief"}`))
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, WithAuth(&AuthConfig{Type: "bearer", Token: "tok"}))
	a, err := s.Score(context.Background(), &core.Film{Title: "Ikiru"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, a.DimensionalScores["pacing_pace"])
	assert.Equal(t, "patient grief", a.Mood())

	_, err = s.Score(context.Background(), nil)
	assert.True(t, core.IsInvalidInput(err))
}

func TestHTTPScorer_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPScorer(srv.URL).Score(context.Background(), &core.Film{Title: "Ran"})
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
}

type failingScorer struct{ calls int }

func (s *failingScorer) Score(context.Context, *core.Film) (*core.Analysis, error) {
	s.calls++
	return nil, errors.New("down")
}

func TestBreakerScorer_Fallback(t *testing.T) {
	next := &failingScorer{}
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	s := NewBreakerScorer(next, cfg)

	for i := 0; i < 4; i++ {
		a, err := s.Score(context.Background(), &core.Film{Title: "Ran"})
		require.NoError(t, err)
		assert.True(t, a.Fallback)
		assert.Empty(t, a.DimensionalScores)
	}
	// 熔断后不再调用下游
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, "open", s.State().String())
}

func TestBreakerScorer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBreakerScorer(&failingScorer{}, DefaultBreakerConfig()).Score(ctx, &core.Film{Title: "Ran"})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingMetadata struct{}

func (failingMetadata) Lookup(context.Context, string, int) (*core.Film, error) {
	return nil, errors.New("down")
}

func TestBreakerMetadata_Fallback(t *testing.T) {
	m := NewBreakerMetadata(failingMetadata{}, DefaultBreakerConfig())
	f, err := m.Lookup(context.Background(), "Close-Up", 1990)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, f.Source)
	assert.Equal(t, "close-up", f.ID())
	assert.Equal(t, []string{"Drama"}, f.Genres)
}
