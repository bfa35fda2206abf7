package rerank

import (
	"context"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
)

// DedupTopN 在排序之后贪心选取前 N 个候选：
// 按当前顺序遍历，跳过 slug 已选中或在排除集合中的候选，选满 N 个即停止。
// 候选不足 N 个时返回全部可用候选，不视为错误。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.WeightedNode{Diversity: -1}, // 排序
//	        &rerank.DedupTopN{},               // 去重并截取 rctx.Limit 个
//	    },
//	}
type DedupTopN struct {
	// N 要保留的数量；N <= 0 时使用 rctx.Limit，两者都 <= 0 时不截断
	N int
}

func (n *DedupTopN) Name() string        { return "rerank.dedup_topn" }
func (n *DedupTopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *DedupTopN) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	return Select(items, limit, rctx), nil
}

// Select 是 DedupTopN 的纯函数形式。limit <= 0 表示不截断。
func Select(items []*core.Candidate, limit int, rctx *core.RecommendContext) []*core.Candidate {
	capHint := len(items)
	if limit > 0 && limit < capHint {
		capHint = limit
	}
	out := make([]*core.Candidate, 0, capHint)
	seen := make(map[string]struct{}, capHint)

	for _, it := range items {
		if it == nil {
			continue
		}
		id := it.ID()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if rctx.IsExcluded(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, it)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// TopNNode 是不做去重的简单截断节点。
type TopNNode struct {
	// N <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
