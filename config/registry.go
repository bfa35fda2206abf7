package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/filter"
	"github.com/rushteam/filmtaste/pipeline"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/filmtaste/config/builders"
// 以触发内置 Node（recall.similar、filter.exclusion、rank.weighted、rerank.dedup_topn 等）的 init 注册。

// Resources 是构建 Node 时需要的运行期依赖（索引、存储），YAML 中无法表达。
type Resources struct {
	Index core.FilmIndex
	Store core.Store
	Bloom filter.BloomFilterChecker

	// Recommend 提供 K、MaxSeeds 等默认值
	Recommend Recommend
}

// NodeBuilder 根据 config 与运行期依赖构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder func(cfg map[string]any, res *Resources) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回绑定了 res 的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func DefaultFactory(res *Resources) *pipeline.NodeFactory {
	if res == nil {
		res = &Resources{Recommend: DefaultRecommend()}
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		b := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return b(cfg, res)
		})
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for _, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			return fmt.Errorf("node type is empty")
		}
		if _, ok := defaultBuilders[nc.Type]; !ok {
			types := make([]string, 0, len(defaultBuilders))
			for t := range defaultBuilders {
				types = append(types, t)
			}
			sort.Strings(types)
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, types)
		}
	}
	return nil
}

// BuildPipeline 校验并构建 pipeline。
func BuildPipeline(cfg *pipeline.Config, res *Resources) (*pipeline.Pipeline, error) {
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory(res))
}
