package recall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/store"
)

func seedIndex(t *testing.T) core.FilmIndex {
	t.Helper()
	idx := store.NewMemoryIndex()
	ctx := context.Background()
	put := func(title string, vec ...float64) {
		f := core.NewFilm(title, 2000)
		require.NoError(t, idx.Put(ctx, core.NewFilmRecord(f, nil, vec, time.Now())))
	}
	put("Stalker", 1, 0, 0)
	put("Solaris", 0.9, 0.1, 0)
	put("Mirror", 0.8, 0.2, 0)
	put("Paterson", 0, 1, 0)
	put("Ikiru", 0, 0, 1)
	return idx
}

func titles(items []*core.Candidate) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestSimilarSource(t *testing.T) {
	idx := seedIndex(t)
	src := &SimilarSource{Index: idx, Seed: &core.Film{Title: "Stalker"}, K: 2}
	assert.Equal(t, "similar.stalker", src.Name())

	out, err := src.Recall(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Solaris", "Mirror"}, titles(out))
	for _, c := range out {
		assert.Equal(t, "Stalker", c.SimilarTo)
		assert.Greater(t, c.BaseSimilarity, 0.9)
		assert.Equal(t, "similar.stalker", c.Labels["recall_source"].Value)
	}

	_, err = (&SimilarSource{Index: idx, Seed: &core.Film{Title: "Unknown"}, K: 2}).Recall(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}

func TestFindSimilar(t *testing.T) {
	idx := seedIndex(t)
	ctx := context.Background()

	got, err := FindSimilar(ctx, idx, "stalker", []float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	// 查询向量不是任何记录时首个结果保留
	got, err = FindSimilar(ctx, idx, "", []float64{0, 0.5, 0.5}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, "stalker", got[0].ID)

	got, err = FindSimilar(ctx, idx, "stalker", []float64{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type staticSource struct {
	name  string
	items []string
	err   error
	delay time.Duration
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Candidate, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Candidate, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, core.NewCandidate(&core.Film{Title: t}))
	}
	return out, nil
}

func TestFanout(t *testing.T) {
	sources := []Source{
		&staticSource{name: "a", items: []string{"x", "y"}, delay: 20 * time.Millisecond},
		&staticSource{name: "broken", err: errors.New("boom")},
		&staticSource{name: "slow", items: []string{"late"}, delay: time.Second},
		&staticSource{name: "b", items: []string{"y", "z"}},
	}

	tests := []struct {
		strategy string
		want     []string
	}{
		{strategy: MergeUnion, want: []string{"x", "y", "y", "z"}},
		{strategy: MergeFirst, want: []string{"x", "y", "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			n := &Fanout{Sources: sources, Timeout: 200 * time.Millisecond, MaxConcurrent: 2, MergeStrategy: tt.strategy}
			out, err := n.Process(context.Background(), nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(out))
		})
	}
}

func TestLovedFanout(t *testing.T) {
	idx := seedIndex(t)
	n := &LovedFanout{Index: idx, K: 1, MaxSeeds: 2}
	rctx := &core.RecommendContext{Loved: []*core.Film{
		{Title: "Paterson"},
		{Title: "paterson"},
		{Title: "Stalker"},
		{Title: "Ikiru"},
	}}

	assert.Len(t, n.Sources(rctx.Loved), 2)

	out, err := n.Process(context.Background(), rctx, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Paterson", out[0].SimilarTo)
	assert.Equal(t, "Stalker", out[1].SimilarTo)
	assert.Equal(t, "Solaris", out[1].Title)

	out, err = n.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
