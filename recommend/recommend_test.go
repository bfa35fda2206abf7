package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/dimension"
	"github.com/rushteam/filmtaste/feedback"
	"github.com/rushteam/filmtaste/filter"
	"github.com/rushteam/filmtaste/store"
)

// stubScorer 按标题返回固定分数，未登记的标题返回错误。
type stubScorer struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
	calls  map[string]int
}

func newStubScorer() *stubScorer {
	name := func(i int) string { return dimension.All()[i].Name }
	return &stubScorer{
		scores: map[string]map[string]float64{
			"Stalker":  {name(0): 7, name(1): 7},
			"Solaris":  {name(0): 7, name(1): 6},
			"Mirror":   {name(0): 6, name(1): 6},
			"Paterson": {name(0): 1, name(1): 1},
		},
		calls: map[string]int{},
	}
}

func (s *stubScorer) Score(_ context.Context, film *core.Film) (*core.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[film.Title]++
	sc, ok := s.scores[film.Title]
	if !ok {
		return nil, errors.New("scoring service down")
	}
	return &core.Analysis{DimensionalScores: sc, CoreEssence: "quiet"}, nil
}

func (s *stubScorer) count(title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[title]
}

func films(titles ...string) []*core.Film {
	out := make([]*core.Film, 0, len(titles))
	for _, t := range titles {
		f := core.NewFilm(t, 1980)
		f.UserRating = 5
		out = append(out, f)
	}
	return out
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *stubScorer) {
	t.Helper()
	scorer := newStubScorer()
	eng := New(store.NewMemoryIndex(), append([]Option{WithScorer(scorer)}, opts...)...)
	require.NoError(t, eng.EnsureAnalyzed(context.Background(), films("Solaris", "Mirror", "Paterson")))
	return eng, scorer
}

func titlesOf(recs []*core.Candidate) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}

func TestGenerateRecommendations(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	resp, err := eng.GenerateRecommendations(ctx, &Request{
		Loved:           films("Stalker"),
		DiversityFactor: Float(0),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, []string{"Solaris", "Mirror", "Paterson"}, titlesOf(resp.Recommendations)[:3])
	assert.NotContains(t, titlesOf(resp.Recommendations), "Stalker")
	for _, r := range resp.Recommendations {
		assert.Equal(t, "Stalker", r.SimilarTo)
	}
	assert.Equal(t, 1, resp.TasteProfile.TotalMovies)

	m := resp.RecommendationMap
	assert.Equal(t, 1, m.TotalLoved)
	assert.Equal(t, 3, m.TotalRecommendations)
	assert.Len(t, m.Edges, 3)
	assert.Equal(t, "stalker", m.Edges[0].Source)
}

func TestGenerateRecommendations_Exclusion(t *testing.T) {
	eng, _ := newTestEngine(t)
	resp, err := eng.GenerateRecommendations(context.Background(), &Request{
		Loved: films("Stalker"),
		Rated: films("Stalker", "Solaris"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mirror", "Paterson"}, titlesOf(resp.Recommendations))
}

func TestGenerateRecommendations_ExclusionNormalizesSlug(t *testing.T) {
	eng, _ := newTestEngine(t)
	resp, err := eng.GenerateRecommendations(context.Background(), &Request{
		Loved: films("Stalker"),
		Rated: []*core.Film{
			{Title: "Stalker", UserRating: 5},
			{Slug: "solaris-1972", Title: "Solaris", Year: 1972, UserRating: 2},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, titlesOf(resp.Recommendations), "Solaris")
	assert.ElementsMatch(t, []string{"Mirror", "Paterson"}, titlesOf(resp.Recommendations))
}

func TestGenerateRecommendations_Limit(t *testing.T) {
	eng, _ := newTestEngine(t)
	resp, err := eng.GenerateRecommendations(context.Background(), &Request{
		Loved:              films("Stalker"),
		NumRecommendations: 1,
		DiversityFactor:    Float(0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Solaris"}, titlesOf(resp.Recommendations))
}

func TestGenerateRecommendations_InvalidInput(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.GenerateRecommendations(ctx, nil)
	assert.True(t, core.IsInvalidInput(err))

	for _, d := range []float64{-0.1, 1.5} {
		_, err = eng.GenerateRecommendations(ctx, &Request{Loved: films("Stalker"), DiversityFactor: Float(d)})
		assert.True(t, core.IsInvalidInput(err), "diversity %v", d)
	}
}

func TestGenerateRecommendations_NoLovedFilms(t *testing.T) {
	eng, _ := newTestEngine(t)
	resp, err := eng.GenerateRecommendations(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)
	assert.Equal(t, 0, resp.TasteProfile.TotalMovies)
	assert.NotNil(t, resp.RecommendationMap)
}

func TestGenerateRecommendations_History(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	bf := filter.NewStoreBloom(kv, 1000, 0.01)
	eng, _ := newTestEngine(t, WithStore(kv, 0), WithBloom(bf))
	ctx := context.Background()

	_, err := eng.GenerateRecommendations(ctx, &Request{
		UserID: "u1",
		Loved:  films("Stalker"),
		Rated:  films("Stalker", "Solaris"),
	})
	require.NoError(t, err)

	// 第二次请求不再携带 Solaris，靠评分历史排除
	resp, err := eng.GenerateRecommendations(ctx, &Request{UserID: "u1", Loved: films("Stalker")})
	require.NoError(t, err)
	assert.NotContains(t, titlesOf(resp.Recommendations), "Solaris")

	resp, err = eng.GenerateRecommendations(ctx, &Request{UserID: "u2", Loved: films("Stalker")})
	require.NoError(t, err)
	assert.Contains(t, titlesOf(resp.Recommendations), "Solaris")
}

func TestRecordRated(t *testing.T) {
	ctx := context.Background()
	eng := New(store.NewMemoryIndex())
	assert.True(t, core.IsNotSupported(eng.RecordRated(ctx, "u1", films("Stalker"))))

	kv := store.NewMemoryStore()
	defer kv.Close()
	eng = New(store.NewMemoryIndex(), WithStore(kv, 0))
	assert.True(t, core.IsInvalidInput(eng.RecordRated(ctx, "", films("Stalker"))))

	require.NoError(t, eng.RecordRated(ctx, "u1", films("Stalker", "Solaris")))
	require.NoError(t, eng.RecordRated(ctx, "u1", films("Solaris", "Mirror")))

	seen, err := filter.NewStoreAdapter(kv).GetSeenFilms(ctx, "u1", SeenKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"stalker", "solaris", "mirror"}, seen)
}

func TestRecordRated_Concurrent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	eng := New(store.NewMemoryIndex(), WithStore(kv, 0))

	titles := []string{"Stalker", "Solaris", "Mirror", "Ikiru", "Ran", "Yi Yi", "Paterson", "Moonlight"}
	var wg sync.WaitGroup
	for _, title := range titles {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			assert.NoError(t, eng.RecordRated(ctx, "u1", films(title)))
		}(title)
	}
	wg.Wait()

	seen, err := filter.NewStoreAdapter(kv).GetSeenFilms(ctx, "u1", SeenKeyPrefix)
	require.NoError(t, err)
	assert.Len(t, seen, len(titles))
}

func TestAnalyzeAndStore(t *testing.T) {
	eng, scorer := newTestEngine(t)
	ctx := context.Background()

	added, err := eng.AnalyzeAndStore(ctx, core.NewFilm("Solaris", 1972))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, scorer.count("Solaris"))

	added, err = eng.AnalyzeAndStore(ctx, core.NewFilm("Unknown Film", 2001))
	require.NoError(t, err)
	assert.True(t, added)

	rec, err := eng.index.Get(ctx, "unknown-film")
	require.NoError(t, err)
	assert.True(t, rec.Document.Analysis.Fallback)
	for _, v := range rec.Vector {
		assert.InDelta(t, 0.5, v, 1e-9)
	}

	_, err = eng.AnalyzeAndStore(ctx, &core.Film{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestAnalyze_Cache(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	scorer := newStubScorer()
	eng := New(store.NewMemoryIndex(), WithScorer(scorer), WithStore(kv, 0))
	ctx := context.Background()

	f := core.NewFilm("Mirror", 1975)
	_, err := eng.Analyze(ctx, f)
	require.NoError(t, err)
	a, err := eng.Analyze(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.count("Mirror"))
	assert.Equal(t, "quiet", a.CoreEssence)

	// fallback 不写缓存
	_, err = eng.Analyze(ctx, core.NewFilm("Broken", 2000))
	require.NoError(t, err)
	_, err = eng.Analyze(ctx, core.NewFilm("Broken", 2000))
	require.NoError(t, err)
	assert.Equal(t, 2, scorer.count("Broken"))
}

func TestEnsureAnalyzed_Cancelled(t *testing.T) {
	eng := New(store.NewMemoryIndex(), WithScorer(newStubScorer()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := eng.EnsureAnalyzed(ctx, films("Stalker", "Solaris"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprint(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	eng, scorer := newTestEngine(t, WithStore(kv, 0))
	ctx := context.Background()

	fp, err := eng.Fingerprint(ctx, films("Stalker", "Solaris"))
	require.NoError(t, err)
	assert.Equal(t, 2, fp.Films)
	assert.Equal(t, 2, fp.Coverage)
	assert.InDelta(t, 7.0, fp.DimensionalScores[dimension.All()[0].Name], 1e-9)
	assert.InDelta(t, 6.5, fp.DimensionalScores[dimension.All()[1].Name], 1e-9)

	// 相同集合（顺序不同）命中缓存
	again, err := eng.Fingerprint(ctx, films("Solaris", "Stalker"))
	require.NoError(t, err)
	assert.Equal(t, fp.Narrative, again.Narrative)
	assert.Equal(t, 1, scorer.count("Stalker"))
}

func TestBuildFingerprint_DropsBadScores(t *testing.T) {
	eng := New(store.NewMemoryIndex())
	name := dimension.All()[0].Name
	fp := eng.BuildFingerprint([]ScoredFilm{
		{Film: core.NewFilm("A", 2000), Scores: map[string]float64{name: 7, "not_a_dimension": 3}},
		{Film: core.NewFilm("B", 2000), Scores: map[string]float64{name: 9}},
	})
	assert.Equal(t, 2, fp.Films)
	assert.Equal(t, 1, fp.Coverage)
	assert.InDelta(t, 7.0, fp.DimensionalScores[name], 1e-9)
}

func TestMatchSlices(t *testing.T) {
	eng := New(store.NewMemoryIndex())
	v := make([]float64, dimension.Count)
	for i := range v {
		v[i] = 0.5
	}
	res, err := eng.MatchSlices(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.OverallSimilarity, 1e-9)

	_, err = eng.MatchSlices(v[:10], v)
	assert.Error(t, err)
}

func TestLovedFilms(t *testing.T) {
	rated := []*core.Film{
		{Title: "A", UserRating: 5},
		{Title: "B", UserRating: 3.5},
		nil,
		{Title: "C", UserRating: 4},
	}
	got := LovedFilms(rated)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
}

func TestBuildRecommendationMap(t *testing.T) {
	loved := films("Stalker", "Ikiru")
	a := core.NewCandidate(core.NewFilm("Solaris", 1972))
	a.SimilarTo = "Stalker"
	a.BaseSimilarity = 0.9
	b := core.NewCandidate(core.NewFilm("Yi Yi", 2000))
	b.SimilarTo = "Somebody Else"

	m := BuildRecommendationMap(loved, []*core.Candidate{a, nil, b})
	assert.Equal(t, 2, m.TotalLoved)
	assert.Equal(t, 2, m.TotalRecommendations)
	assert.Len(t, m.Nodes, 4)
	require.Len(t, m.Edges, 1)
	assert.Equal(t, MapEdge{Source: "stalker", Target: "solaris", Weight: 0.9}, m.Edges[0])
	assert.Equal(t, NodeRecommended, m.Nodes[2].Type)
}

func TestGenerateRecommendations_Feedback(t *testing.T) {
	fc := feedback.NewMemoryCollector()
	eng, _ := newTestEngine(t, WithFeedback(fc))

	resp, err := eng.GenerateRecommendations(context.Background(), &Request{
		UserID: "u1",
		Loved:  films("Stalker"),
	})
	require.NoError(t, err)

	var impressions, rated int
	for _, ev := range fc.Events() {
		switch ev.Type {
		case feedback.TypeImpression:
			impressions++
			assert.Equal(t, resp.RequestID, ev.RequestID)
		case feedback.TypeRated:
			rated++
			assert.Equal(t, "stalker", ev.Slug)
		}
	}
	assert.Equal(t, len(resp.Recommendations), impressions)
	assert.Equal(t, 1, rated)
}
