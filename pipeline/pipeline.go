package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/pkg/metrics"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：召回 -> 过滤 -> 排序 -> 重排。
type Pipeline struct {
	Nodes []Node
}

// Run 依次执行各 Node。任一 Node 出错即中止，错误带上 Node 名称。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	log := logging.Ctx(ctx)
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		metrics.ObserveNode(node.Name(), string(node.Kind()), start, err)
		if err != nil {
			log.Error().Err(err).Str("node", node.Name()).Msg("pipeline node failed")
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		log.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", time.Since(start)).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
