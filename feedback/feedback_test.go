package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/utils"
)

func fixedNow(t *testing.T) {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { nowFunc = old })
}

func TestImpressionEvents(t *testing.T) {
	fixedNow(t)
	a := core.NewCandidate(core.NewFilm("Solaris", 1972))
	a.Score = 0.8
	a.PutLabel("recall_source", utils.Label{Value: "similar.stalker", Source: "recall"})
	b := core.NewCandidate(core.NewFilm("Mirror", 1975))

	rctx := &core.RecommendContext{RequestID: "r1", UserID: "u1"}
	events := ImpressionEvents(rctx, []*core.Candidate{a, nil, b})
	require.Len(t, events, 2)

	assert.Equal(t, &Event{
		RequestID: "r1",
		UserID:    "u1",
		Slug:      "solaris",
		Type:      TypeImpression,
		Timestamp: 1700000000,
		Position:  0,
		Score:     0.8,
		Labels:    map[string]string{"recall_source": "similar.stalker"},
	}, events[0])
	assert.Equal(t, 2, events[1].Position)
	assert.Nil(t, events[1].Labels)

	assert.Len(t, ImpressionEvents(nil, []*core.Candidate{a}), 1)
}

func TestRatedEvents(t *testing.T) {
	fixedNow(t)
	films := []*core.Film{
		{Title: "Stalker", UserRating: 5},
		{Title: "!!"},
		{Title: "Paterson", UserRating: 3},
	}
	events := RatedEvents("u1", films)
	require.Len(t, events, 2)
	assert.Equal(t, "stalker", events[0].Slug)
	assert.Equal(t, TypeRated, events[0].Type)
	assert.InDelta(t, 5.0, events[0].Rating, 1e-9)
	assert.Equal(t, "paterson", events[1].Slug)
}

func TestMemoryCollector(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollector()
	require.NoError(t, c.RecordRated(ctx, "u1", []*core.Film{{Title: "Stalker"}}))
	require.NoError(t, c.RecordImpression(ctx, nil, []*core.Candidate{core.NewCandidate(core.NewFilm("Solaris", 1972))}))
	assert.Len(t, c.Events(), 2)

	require.NoError(t, c.Close())
	require.NoError(t, c.RecordRated(ctx, "u1", []*core.Film{{Title: "Mirror"}}))
	assert.Len(t, c.Events(), 2)
}
