package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pipeline"
)

// Diversity 限制同一分组的候选数量，超出 MaxPerGroup 的候选后移到列表末尾（不丢弃）。
// 分组键来源优先级：
//   - Key == "similar_to"：召回种子影片
//   - Key == "director"：导演
//   - Key == "genre"：第一个类型
//   - 其他：label[Key].Value
type Diversity struct {
	Key         string // 默认 "similar_to"
	MaxPerGroup int    // 默认 3
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.Key
	if key == "" {
		key = "similar_to"
	}
	maxPer := n.MaxPerGroup
	if maxPer <= 0 {
		maxPer = 3
	}

	counts := make(map[string]int, 16)
	head := make([]*core.Candidate, 0, len(items))
	var tail []*core.Candidate

	for _, it := range items {
		if it == nil {
			continue
		}
		group := groupOf(it, key)
		if group == "" {
			head = append(head, it)
			continue
		}
		if counts[group] >= maxPer {
			tail = append(tail, it)
			continue
		}
		counts[group]++
		head = append(head, it)
	}
	return append(head, tail...), nil
}

func groupOf(c *core.Candidate, key string) string {
	switch key {
	case "similar_to":
		return strings.ToLower(c.SimilarTo)
	case "director":
		return strings.ToLower(c.Director)
	case "genre":
		if len(c.Genres) > 0 {
			return strings.ToLower(c.Genres[0])
		}
		return ""
	}
	if c.Labels != nil {
		if lbl, ok := c.Labels[key]; ok {
			return lbl.Value
		}
	}
	return ""
}
