package core

import "github.com/rushteam/filmtaste/pkg/utils"

// RecommendContext 承载一次推荐请求的用户侧信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	RequestID string
	UserID    string

	// Loved 是作为召回种子的喜爱影片（已去重）
	Loved []*Film

	// Profile 是由 Loved 聚合得到的类别画像，供 rank 使用
	Profile *TasteProfile

	// Exclude 是排除集合（已看过/已评分影片的 slug）
	Exclude map[string]struct{}

	// DiversityFactor 取值 [0,1]，越大越偏向探索
	DiversityFactor float64

	// Limit 是期望返回的推荐数量
	Limit int

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级附加参数，可在 CEL 表达式中通过 rctx.params 访问
	Params map[string]any
}

// ExcludeFilms 把影片加入排除集合。
func (rctx *RecommendContext) ExcludeFilms(films []*Film) {
	if rctx.Exclude == nil {
		rctx.Exclude = make(map[string]struct{}, len(films))
	}
	for _, f := range films {
		if id := f.ID(); id != "" {
			rctx.Exclude[id] = struct{}{}
		}
	}
}

// IsExcluded 判断 slug 是否在排除集合中。
func (rctx *RecommendContext) IsExcluded(slug string) bool {
	if rctx == nil || rctx.Exclude == nil {
		return false
	}
	_, ok := rctx.Exclude[slug]
	return ok
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
