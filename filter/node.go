package filter

import (
	"context"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/pkg/metrics"
	"github.com/rushteam/filmtaste/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该候选就会被过滤掉。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Candidate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				logging.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Str("film", item.ID()).Msg("filter failed")
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			metrics.RecordFiltered(reason, 1)
			item.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
