// Package recommend 是对外的推荐入口：口味指纹、类别画像、推荐生成、单片匹配。
//
//	eng := recommend.New(index,
//		recommend.WithScorer(scorer),
//		recommend.WithStore(kv),
//	)
//	resp, err := eng.GenerateRecommendations(ctx, &recommend.Request{Loved: loved, Rated: rated})
package recommend

import (
	"sync"

	"github.com/rushteam/filmtaste/config"
	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/dimension"
	"github.com/rushteam/filmtaste/feedback"
	"github.com/rushteam/filmtaste/filter"
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/profile"
	"github.com/rushteam/filmtaste/rank"
	"github.com/rushteam/filmtaste/recall"
	"github.com/rushteam/filmtaste/rerank"
	"github.com/rushteam/filmtaste/similarity"
	"github.com/rushteam/filmtaste/store"
	"github.com/rushteam/filmtaste/taste"
)

// SeenKeyPrefix 是跨请求评分历史在 Store 中的 key 前缀。
const SeenKeyPrefix = "user:seen"

// Engine 组合索引、协作方与 pipeline。零值不可用，使用 New 创建。
// 除 GenerateRecommendations 等涉及 I/O 的方法外，计算方法均为纯函数。
type Engine struct {
	index    core.FilmIndex
	scorer   core.Scorer
	metadata core.MetadataProvider
	kv       core.Store
	bloom    *filter.StoreBloom
	cache    *store.JSONCache
	feedback feedback.Collector
	defaults config.Recommend
	pipe     *pipeline.Pipeline

	// userLocks 按 userID 串行化评分历史的读-改-写
	userLocks sync.Map
}

// Option 配置 Engine。
type Option func(*Engine)

// WithScorer 设置打分协作方；未设置时新影片使用 DefaultAnalysis。
func WithScorer(s core.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithMetadata 设置元数据协作方，用于补全只有标题的影片。
func WithMetadata(m core.MetadataProvider) Option {
	return func(e *Engine) { e.metadata = m }
}

// WithStore 设置键值存储：指纹/分析缓存与跨请求评分历史。ttl 单位为秒。
func WithStore(s core.Store, ttl int) Option {
	return func(e *Engine) {
		e.kv = s
		e.cache = store.NewJSONCache(s, ttl)
	}
}

// WithBloom 设置评分历史布隆过滤器（通常与 WithStore 使用同一个 Store）。
func WithBloom(b *filter.StoreBloom) Option {
	return func(e *Engine) { e.bloom = b }
}

// WithFeedback 设置曝光与评分事件采集器。
func WithFeedback(c feedback.Collector) Option {
	return func(e *Engine) { e.feedback = c }
}

// WithDefaults 设置推荐默认参数。
func WithDefaults(r config.Recommend) Option {
	return func(e *Engine) { e.defaults = r }
}

// WithPipeline 使用自定义 pipeline 代替内置链路。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.pipe = p }
}

func New(index core.FilmIndex, opts ...Option) *Engine {
	e := &Engine{
		index:    index,
		defaults: config.DefaultRecommend(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipe == nil {
		e.pipe = e.defaultPipeline()
	}
	return e
}

// Resources 返回构建配置驱动 pipeline 所需的运行期依赖。
func (e *Engine) Resources() *config.Resources {
	res := &config.Resources{Index: e.index, Store: e.kv, Recommend: e.defaults}
	if e.bloom != nil {
		res.Bloom = e.bloom
	}
	return res
}

// defaultPipeline 召回 -> 排除已评分 -> 加权打分 -> 去重截断。
func (e *Engine) defaultPipeline() *pipeline.Pipeline {
	var adapter *filter.StoreAdapter
	if e.kv != nil {
		if e.bloom != nil {
			adapter = filter.NewStoreAdapterWithBloomFilter(e.kv, e.bloom)
		} else {
			adapter = filter.NewStoreAdapter(e.kv)
		}
	}
	return &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.LovedFanout{
			Index:         e.index,
			K:             e.defaults.NeighborsPerFilm,
			MaxSeeds:      e.defaults.MaxSeedFilms,
			Timeout:       e.defaults.SourceTimeout,
			MaxConcurrent: e.defaults.MaxConcurrent,
		},
		&filter.FilterNode{Filters: []filter.Filter{filter.NewExclusionFilter(adapter, SeenKeyPrefix)}},
		&rank.WeightedNode{Diversity: -1},
		&rerank.DedupTopN{},
	}}
}

// ScoredFilm 是带有打分协作方原始维度分数的影片。
type ScoredFilm struct {
	Film   *core.Film         `json:"film"`
	Scores map[string]float64 `json:"dimensional_scores"`
}

// BuildFingerprint 由喜爱影片的原始分数生成口味指纹。未知维度与非法分数被丢弃并记录 debug 日志。
func (e *Engine) BuildFingerprint(films []ScoredFilm) taste.Fingerprint {
	return taste.Build(decodeAll(films))
}

func decodeAll(films []ScoredFilm) []dimension.ScoreSet {
	sets := make([]dimension.ScoreSet, 0, len(films))
	for _, f := range films {
		set, report := dimension.Decode(f.Scores)
		if !report.Clean() {
			logging.Debug().
				Str("film", f.Film.ID()).
				Strs("unknown", report.Unknown).
				Strs("invalid", report.Invalid).
				Msg("dropped dimensional scores")
		}
		sets = append(sets, set)
	}
	return sets
}

// BuildTasteProfile 聚合喜爱影片的类别画像。
func (e *Engine) BuildTasteProfile(films []*core.Film) *core.TasteProfile {
	return profile.Aggregate(films)
}

// MatchFilmToTaste 计算影片向量与用户向量的匹配结果。
func (e *Engine) MatchFilmToTaste(film, user dimension.Vector) similarity.MatchResult {
	return similarity.Match(film, user)
}

// MatchSlices 与 MatchFilmToTaste 相同，但接受切片；长度不为 62 时返回 INVALID_INPUT。
func (e *Engine) MatchSlices(film, user []float64) (similarity.MatchResult, error) {
	fv, err := dimension.VectorFromSlice(film)
	if err != nil {
		return similarity.MatchResult{}, err
	}
	uv, err := dimension.VectorFromSlice(user)
	if err != nil {
		return similarity.MatchResult{}, err
	}
	return similarity.Match(fv, uv), nil
}

// LovedFilms 返回评分不低于 core.LovedRatingThreshold 的影片。
func LovedFilms(rated []*core.Film) []*core.Film {
	out := make([]*core.Film, 0, len(rated))
	for _, f := range rated {
		if f != nil && f.UserRating >= core.LovedRatingThreshold {
			out = append(out, f)
		}
	}
	return out
}
