package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/utils"
	"github.com/rushteam/filmtaste/similarity"
)

// SelfMatchDistance 以内的首个近邻视为种子影片自身。
const SelfMatchDistance = 0.01

// SimilarSource 以一部喜爱影片为种子，从 FilmIndex 中检索最相似的 K 部影片。
// 种子必须已写入索引。
type SimilarSource struct {
	Index core.FilmIndex
	Seed  *core.Film
	K     int
}

func (s *SimilarSource) Name() string {
	return "similar." + s.Seed.ID()
}

func (s *SimilarSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Candidate, error) {
	if s.Seed == nil || s.K <= 0 {
		return nil, nil
	}
	rec, err := s.Index.Get(ctx, s.Seed.ID())
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", s.Seed.ID(), err)
	}
	neighbors, err := FindSimilar(ctx, s.Index, rec.ID, rec.Vector, s.K)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Candidate, 0, len(neighbors))
	for _, nb := range neighbors {
		c := core.NewCandidate(&nb.Document.Film)
		if c.Slug == "" {
			c.Slug = nb.ID
		}
		c.BaseSimilarity = similarity.FromDistance(nb.Distance)
		c.SimilarTo = s.Seed.Title
		c.PutLabel("recall_source", utils.Label{Value: s.Name(), Source: "recall"})
		out = append(out, c)
	}
	return out, nil
}

// FindSimilar 查询 k+1 个近邻：首个结果距离小于 SelfMatchDistance 时视为自身并丢弃，
// 其余位置上与 selfID 相同的记录同样跳过，最终截断到 k。
func FindSimilar(ctx context.Context, index core.FilmIndex, selfID string, vector []float64, k int) ([]core.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	hits, err := index.QueryNearest(ctx, vector, k+1)
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 && hits[0].Distance < SelfMatchDistance {
		hits = hits[1:]
	}
	out := make([]core.Neighbor, 0, k)
	for _, h := range hits {
		if h.ID == selfID {
			continue
		}
		out = append(out, h)
		if len(out) == k {
			break
		}
	}
	return out, nil
}
