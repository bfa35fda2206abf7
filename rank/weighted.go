package rank

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/pkg/utils"
)

// 加权打分的固定系数。diversity 越大，相似度权重越低、新近度权重越高。
const (
	SimilarityWeight    = 0.5
	SimilarityDamping   = 0.3
	GenreWeight         = 0.2
	ThemeWeight         = 0.15
	DirectorWeight      = 0.15
	DirectorBonus       = 1.2
	RecencyWeight       = 0.1
	RecencyPivotYear    = 2020
	DefaultYearIfAbsent = 2000
)

// Score 计算单个候选的推荐分与分量。profile 为空时类别分量均为 0。
//
//	score = base*0.5*(1-d*0.3) + genre*0.2 + theme*0.15 + (bonus-1)*0.15 + recency*d*0.1
func Score(c *core.Candidate, profile *core.TasteProfile, diversity float64) (float64, core.ScoreBreakdown) {
	if c == nil {
		return 0, core.ScoreBreakdown{}
	}
	if profile == nil {
		profile = core.EmptyTasteProfile()
	}

	genre := overlap(c.Genres, profile.TopGenres)
	theme := 0.0
	if len(c.Themes) > 0 {
		theme = overlap(c.Themes, profile.TopThemes)
	}
	bonus := 1.0
	directorMatch := c.Director != "" && contains(profile.TopDirectors, c.Director)
	if directorMatch {
		bonus = DirectorBonus
	}
	recency := Recency(c.Year)

	score := c.BaseSimilarity*SimilarityWeight*(1-diversity*SimilarityDamping) +
		genre*GenreWeight +
		theme*ThemeWeight +
		(bonus-1.0)*DirectorWeight +
		recency*diversity*RecencyWeight

	return score, core.ScoreBreakdown{
		Similarity:    c.BaseSimilarity,
		GenreMatch:    genre,
		ThemeMatch:    theme,
		DirectorMatch: directorMatch,
		Recency:       recency,
	}
}

// Recency 是 min(year/2020, 1)，缺失年份按 2000 计。
func Recency(year int) float64 {
	if year <= 0 {
		year = DefaultYearIfAbsent
	}
	return math.Min(float64(year)/RecencyPivotYear, 1.0)
}

// overlap 是 |set(items) ∩ top| / max(|set(items)|,1)，items 先去重。
func overlap(items, top []string) float64 {
	if len(top) == 0 || len(items) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(top))
	for _, t := range top {
		set[t] = struct{}{}
	}
	uniq := make(map[string]struct{}, len(items))
	hit := 0
	for _, it := range items {
		if _, dup := uniq[it]; dup {
			continue
		}
		uniq[it] = struct{}{}
		if _, ok := set[it]; ok {
			hit++
		}
	}
	return float64(hit) / math.Max(float64(len(uniq)), 1)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// WeightedNode 是加权打分排序 Node。
//   - 写入 labels：rank_score
//   - 更新 Candidate.Score / Breakdown，并按分数降序稳定排序（同分保持召回顺序）
type WeightedNode struct {
	// Diversity < 0 时使用请求级 rctx.DiversityFactor
	Diversity float64
}

func (n *WeightedNode) Name() string        { return "rank.weighted" }
func (n *WeightedNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *WeightedNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(items) == 0 {
		return items, nil
	}

	diversity := n.Diversity
	var profile *core.TasteProfile
	if rctx != nil {
		profile = rctx.Profile
		if diversity < 0 {
			diversity = rctx.DiversityFactor
		}
	}
	if diversity < 0 {
		diversity = 0
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score, it.Breakdown = Score(it, profile, diversity)
		it.PutLabel("rank_score", utils.Label{Value: n.Name(), Source: "rank"})
	}

	SortByScore(items)
	return items, nil
}

// SortByScore 按 Score 降序稳定排序，nil 排在最后。
func SortByScore(items []*core.Candidate) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
