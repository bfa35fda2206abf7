package core

import "github.com/rushteam/filmtaste/pkg/utils"

// Candidate 是推荐链路中的统一承载结构：影片记录 + 召回信号 + 打分结果 + 标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Candidate struct {
	Film

	// BaseSimilarity 来自向量检索：1 - cosine distance
	BaseSimilarity float64 `json:"base_similarity"`
	// SimilarTo 是召回该候选的种子影片（用户喜爱影片）的标题
	SimilarTo string `json:"similar_to"`

	Score     float64        `json:"recommendation_score"`
	Breakdown ScoreBreakdown `json:"score_breakdown"`

	Labels map[string]utils.Label `json:"labels,omitempty"`
}

// ScoreBreakdown 记录各分量，便于 explain。
type ScoreBreakdown struct {
	Similarity    float64 `json:"similarity"`
	GenreMatch    float64 `json:"genre_match"`
	ThemeMatch    float64 `json:"theme_match"`
	DirectorMatch bool    `json:"director_match"`
	Recency       float64 `json:"recency"`
}

func NewCandidate(f *Film) *Candidate {
	c := &Candidate{Labels: make(map[string]utils.Label)}
	if f != nil {
		c.Film = *f.Clone()
	}
	return c
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}
