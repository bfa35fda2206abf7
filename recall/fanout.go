package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/pkg/metrics"
	"github.com/rushteam/filmtaste/pkg/utils"
)

// 合并策略
const (
	MergeUnion = "union" // 保留全部结果（默认），同一影片可来自多个种子
	MergeFirst = "first" // 按 slug 去重，保留先出现的
)

// Fanout 是一个 Recall Node：并发执行多个召回源并合并结果。
// 每个源写入独立的槽位，合并按 Sources 顺序进行，结果与调度顺序无关。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个召回源的超时时间，0 表示不限
	MaxConcurrent int           // 最大并发数，0 表示不限
	MergeStrategy string
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 忽略输入候选。单个源失败或超时只记录日志，不影响其他源。
func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	slots := make([][]*core.Candidate, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("source", src.Name()).Msg("recall source failed")
				return nil
			}
			for _, it := range items {
				if it == nil {
					continue
				}
				it.PutLabel("recall_source", utils.Label{Value: src.Name(), Source: "recall"})
			}
			metrics.RecordRecall(src.Name(), len(items))
			slots[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []*core.Candidate
	for _, items := range slots {
		all = append(all, items...)
	}
	if n.MergeStrategy == MergeFirst {
		return mergeFirst(all), nil
	}
	return compact(all), nil
}

// mergeFirst 按 slug 去重，保留第一个出现的并合并后来者的 labels。
func mergeFirst(all []*core.Candidate) []*core.Candidate {
	seen := make(map[string]*core.Candidate, len(all))
	out := make([]*core.Candidate, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		id := it.ID()
		if old, ok := seen[id]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[id] = it
		out = append(out, it)
	}
	return out
}

func compact(all []*core.Candidate) []*core.Candidate {
	out := all[:0]
	for _, it := range all {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
