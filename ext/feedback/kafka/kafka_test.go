package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/feedback"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	fail    bool
	closed  bool
}

func (p *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	p.mu.Lock()
	p.records = append(p.records, r)
	fail := p.fail
	p.mu.Unlock()
	if fail {
		promise(r, errors.New("broker unreachable"))
		return
	}
	promise(r, nil)
}

func (p *fakeProducer) Flush(context.Context) error { return nil }

func (p *fakeProducer) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *fakeProducer) snapshot() []*kgo.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kgo.Record(nil), p.records...)
}

func films(titles ...string) []*core.Film {
	out := make([]*core.Film, 0, len(titles))
	for _, t := range titles {
		out = append(out, &core.Film{Title: t, UserRating: 5})
	}
	return out
}

func TestCollector_FlushOnClose(t *testing.T) {
	p := &fakeProducer{}
	c := newCollector(p, Config{Topic: "ratings", BatchSize: 100, FlushInterval: time.Hour})

	require.NoError(t, c.RecordRated(context.Background(), "u1", films("Stalker", "Solaris")))
	assert.Empty(t, p.snapshot())

	require.NoError(t, c.Close())
	recs := p.snapshot()
	require.Len(t, recs, 2)
	assert.Equal(t, "ratings", recs[0].Topic)
	assert.Equal(t, []byte("u1"), recs[0].Key)

	var ev feedback.Event
	require.NoError(t, json.Unmarshal(recs[1].Value, &ev))
	assert.Equal(t, "solaris", ev.Slug)
	assert.Equal(t, feedback.TypeRated, ev.Type)
	assert.True(t, p.closed)

	// 关闭后丢弃
	require.NoError(t, c.RecordRated(context.Background(), "u1", films("Mirror")))
	require.NoError(t, c.Close())
	assert.Len(t, p.snapshot(), 2)
}

func TestCollector_FlushOnBatchSize(t *testing.T) {
	p := &fakeProducer{}
	c := newCollector(p, Config{Topic: "impressions", BatchSize: 2, FlushInterval: time.Hour})
	defer c.Close()

	recs := []*core.Candidate{
		core.NewCandidate(core.NewFilm("Solaris", 1972)),
		core.NewCandidate(core.NewFilm("Mirror", 1975)),
	}
	require.NoError(t, c.RecordImpression(context.Background(), &core.RecommendContext{UserID: "u1"}, recs))

	assert.Eventually(t, func() bool { return len(p.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestCollector_FlushOnInterval(t *testing.T) {
	p := &fakeProducer{fail: true}
	c := newCollector(p, Config{Topic: "ratings", BatchSize: 100, FlushInterval: 20 * time.Millisecond})
	defer c.Close()

	require.NoError(t, c.RecordRated(context.Background(), "u1", films("Stalker")))
	assert.Eventually(t, func() bool { return len(p.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestClientOpts(t *testing.T) {
	assert.Len(t, clientOpts(Config{Brokers: []string{"localhost:9092"}}), 5)
	assert.Len(t, clientOpts(Config{RequiredAcks: -1, Idempotent: true, Compression: "zstd"}), 5)
}
