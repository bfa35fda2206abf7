package core

import "context"

// Scorer 是打分协作方的领域接口：给定影片元数据，返回维度分数与自由文本。
//
// 实现：
//   - service.HTTPScorer：远程打分服务
//   - service.BreakerScorer：熔断包装，失败时返回 DefaultAnalysis
type Scorer interface {
	Score(ctx context.Context, film *Film) (*Analysis, error)
}

// MetadataProvider 是元数据协作方的领域接口。
// 对"未找到"不返回错误，而是返回低置信度的 fallback 记录。
type MetadataProvider interface {
	Lookup(ctx context.Context, title string, year int) (*Film, error)
}
