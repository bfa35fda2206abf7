package pipeline

import (
	"context"

	"github.com/rushteam/filmtaste/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：按喜爱影片检索相似候选
	KindFilter      Kind = "filter"      // 过滤阶段：剔除已看过/不符合约束的候选
	KindRank        Kind = "rank"        // 排序阶段：加权打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：去重截断、多样性控制
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充解释信息
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态，召回生成、过滤截断、重排都是同一种操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Candidate,
	) ([]*core.Candidate, error)
}

// NodeFunc 把普通函数包装成 Node，便于在测试或示例中临时插入逻辑。
type NodeFunc struct {
	NodeName string
	NodeKind Kind
	Fn       func(ctx context.Context, rctx *core.RecommendContext, items []*core.Candidate) ([]*core.Candidate, error)
}

func (n *NodeFunc) Name() string { return n.NodeName }
func (n *NodeFunc) Kind() Kind   { return n.NodeKind }

func (n *NodeFunc) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Candidate) ([]*core.Candidate, error) {
	if n.Fn == nil {
		return items, nil
	}
	return n.Fn(ctx, rctx, items)
}
