// Package builders 注册内置 Node 的配置构建器，使用时 import _ 即可。
package builders

import (
	"fmt"

	"github.com/rushteam/filmtaste/config"
	"github.com/rushteam/filmtaste/filter"
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/pkg/conv"
	"github.com/rushteam/filmtaste/rank"
	"github.com/rushteam/filmtaste/recall"
	"github.com/rushteam/filmtaste/rerank"
)

func init() {
	config.Register("recall.similar", BuildSimilarNode)
	config.Register("filter", BuildFilterNode)
	config.Register("filter.exclusion", single("exclusion"))
	config.Register("filter.blacklist", single("blacklist"))
	config.Register("filter.expr", single("expr"))
	config.Register("rank.weighted", BuildWeightedNode)
	config.Register("rerank.dedup_topn", BuildDedupTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildSimilarNode 构建按喜爱影片并发检索近邻的召回 Node，需要 Resources.Index。
//
//	- type: recall.similar
//	  config: {k: 10, max_seeds: 10, timeout: 2s, max_concurrent: 4}
func BuildSimilarNode(cfg map[string]any, res *config.Resources) (pipeline.Node, error) {
	if res == nil || res.Index == nil {
		return nil, fmt.Errorf("recall.similar requires a film index")
	}
	d := res.Recommend
	return &recall.LovedFanout{
		Index:         res.Index,
		K:             int(conv.ConfigGetInt64(cfg, "k", int64(d.NeighborsPerFilm))),
		MaxSeeds:      int(conv.ConfigGetInt64(cfg, "max_seeds", int64(d.MaxSeedFilms))),
		Timeout:       conv.ConfigGetDuration(cfg, "timeout", d.SourceTimeout),
		MaxConcurrent: int(conv.ConfigGetInt64(cfg, "max_concurrent", int64(d.MaxConcurrent))),
	}, nil
}

// BuildFilterNode 构建组合过滤 Node。
//
//	- type: filter
//	  config:
//	    filters:
//	      - {type: exclusion, key_prefix: "user:seen"}
//	      - {type: blacklist, titles: ["The Room"], key: "blacklist"}
//	      - {type: expr, expr: "film.year >= 1960", invert: false}
func BuildFilterNode(cfg map[string]any, res *config.Resources) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		f, err := buildFilter(conv.ConfigGet(filterMap, "type", ""), filterMap, res)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func single(filterType string) config.NodeBuilder {
	return func(cfg map[string]any, res *config.Resources) (pipeline.Node, error) {
		f, err := buildFilter(filterType, cfg, res)
		if err != nil {
			return nil, err
		}
		return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
	}
}

func buildFilter(filterType string, cfg map[string]any, res *config.Resources) (filter.Filter, error) {
	var adapter *filter.StoreAdapter
	if res != nil && res.Store != nil {
		adapter = filter.NewStoreAdapterWithBloomFilter(res.Store, res.Bloom)
	}

	switch filterType {
	case "exclusion":
		return filter.NewExclusionFilter(adapter, conv.ConfigGet(cfg, "key_prefix", "")), nil
	case "blacklist":
		titles := conv.SliceAnyToString(cfg["titles"])
		if titles == nil {
			titles = []string{}
		}
		return filter.NewBlacklistFilter(titles, adapter, conv.ConfigGet(cfg, "key", "")), nil
	case "expr":
		expr := conv.ConfigGet(cfg, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("expr filter requires expr")
		}
		return filter.NewExprFilter(expr, conv.ConfigGet(cfg, "invert", false))
	default:
		return nil, fmt.Errorf("unknown filter type: %s", filterType)
	}
}

// BuildWeightedNode 构建加权打分 Node；diversity 缺省时使用请求级多样性因子。
func BuildWeightedNode(cfg map[string]any, _ *config.Resources) (pipeline.Node, error) {
	d := conv.ConfigGetFloat64(cfg, "diversity", -1)
	if d > 1 {
		return nil, fmt.Errorf("diversity must be in [0,1], got %v", d)
	}
	return &rank.WeightedNode{Diversity: d}, nil
}

func BuildDedupTopNNode(cfg map[string]any, _ *config.Resources) (pipeline.Node, error) {
	return &rerank.DedupTopN{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildDiversityNode(cfg map[string]any, _ *config.Resources) (pipeline.Node, error) {
	return &rerank.Diversity{
		Key:         conv.ConfigGet(cfg, "key", "similar_to"),
		MaxPerGroup: int(conv.ConfigGetInt64(cfg, "max_per_group", 3)),
	}, nil
}

func BuildTopNNode(cfg map[string]any, _ *config.Resources) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}
