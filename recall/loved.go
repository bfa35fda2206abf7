package recall

import (
	"context"
	"time"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
)

// LovedFanout 为 rctx.Loved 中的每部影片（最多 MaxSeeds 部）构建一个 SimilarSource，
// 交给 Fanout 并发召回。
type LovedFanout struct {
	Index         core.FilmIndex
	K             int // 每部种子的近邻数
	MaxSeeds      int // 0 表示不限
	Timeout       time.Duration
	MaxConcurrent int
}

func (n *LovedFanout) Name() string        { return "recall.similar" }
func (n *LovedFanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *LovedFanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	if rctx == nil || len(rctx.Loved) == 0 {
		return items, nil
	}
	fan := &Fanout{
		Sources:       n.Sources(rctx.Loved),
		Timeout:       n.Timeout,
		MaxConcurrent: n.MaxConcurrent,
		MergeStrategy: MergeUnion,
	}
	return fan.Process(ctx, rctx, items)
}

// Sources 返回种子影片对应的召回源，按 slug 去重并截断到 MaxSeeds。
func (n *LovedFanout) Sources(loved []*core.Film) []Source {
	seen := make(map[string]struct{}, len(loved))
	out := make([]Source, 0, len(loved))
	for _, f := range loved {
		id := f.ID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, &SimilarSource{Index: n.Index, Seed: f, K: n.K})
		if n.MaxSeeds > 0 && len(out) == n.MaxSeeds {
			break
		}
	}
	return out
}
