package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/pkg/metrics"
	"github.com/rushteam/filmtaste/profile"
	"github.com/rushteam/filmtaste/store"
	"github.com/rushteam/filmtaste/taste"
)

// Request 是一次推荐请求。
type Request struct {
	UserID string `json:"user_id,omitempty"`

	// Loved 是召回种子；Rated 是全部已评分影片（排除集合），为空时取 Loved
	Loved []*core.Film `json:"loved_films"`
	Rated []*core.Film `json:"rated_films,omitempty"`

	// NumRecommendations <= 0 时使用默认值
	NumRecommendations int `json:"num_recommendations,omitempty"`
	// DiversityFactor 为 nil 时使用默认值，取值 [0,1]
	DiversityFactor *float64 `json:"diversity_factor,omitempty"`
}

// Response 是推荐结果。
type Response struct {
	RequestID         string             `json:"request_id"`
	Recommendations   []*core.Candidate  `json:"recommendations"`
	TasteProfile      *core.TasteProfile `json:"taste_profile"`
	Insights          []string           `json:"insights"`
	RecommendationMap *RecommendationMap `json:"recommendation_map"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Float 返回 v 的指针，便于填写 Request.DiversityFactor。
func Float(v float64) *float64 { return &v }

// GenerateRecommendations 生成推荐。协作方失败、结果不足都不是错误；
// 只有 nil 请求或非法多样性因子返回 INVALID_INPUT。
func (e *Engine) GenerateRecommendations(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, "request is nil")
	}
	diversity := e.defaults.DiversityFactor
	if req.DiversityFactor != nil {
		diversity = *req.DiversityFactor
	}
	if math.IsNaN(diversity) || diversity < 0 || diversity > 1 {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput,
			fmt.Sprintf("diversity factor %v out of [0,1]", diversity))
	}
	limit := req.NumRecommendations
	if limit <= 0 {
		limit = e.defaults.NumRecommendations
	}

	requestID := logging.NewRequestID()
	ctx = logging.WithRequestID(ctx, requestID)
	log := logging.Ctx(ctx)

	loved := compactFilms(req.Loved)
	rated := compactFilms(req.Rated)
	if len(rated) == 0 {
		rated = loved
	}

	rctx := &core.RecommendContext{
		RequestID:       requestID,
		UserID:          req.UserID,
		Loved:           loved,
		Profile:         profile.Aggregate(loved),
		DiversityFactor: diversity,
		Limit:           limit,
	}
	rctx.ExcludeFilms(rated)

	log.Info().
		Int("loved", len(loved)).
		Int("excluded", len(rctx.Exclude)).
		Int("limit", limit).
		Float64("diversity", diversity).
		Msg("generating recommendations")

	if err := e.EnsureAnalyzed(ctx, loved); err != nil {
		return nil, err
	}

	recs, err := e.pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("recommendation pipeline: %w", err)
	}
	if recs == nil {
		recs = []*core.Candidate{}
	}
	if req.UserID != "" && e.kv != nil {
		if err := e.RecordRated(ctx, req.UserID, rated); err != nil {
			log.Warn().Err(err).Msg("record rating history failed")
		}
	}
	if e.feedback != nil {
		if err := e.feedback.RecordImpression(ctx, rctx, recs); err != nil {
			log.Warn().Err(err).Msg("record impressions failed")
		}
		if req.UserID != "" {
			if err := e.feedback.RecordRated(ctx, req.UserID, rated); err != nil {
				log.Warn().Err(err).Msg("record rated events failed")
			}
		}
	}
	metrics.RecommendationsServed.Add(float64(len(recs)))
	if len(recs) < limit {
		log.Debug().Int("returned", len(recs)).Int("limit", limit).Msg("recommendations under-filled")
	}

	return &Response{
		RequestID:         requestID,
		Recommendations:   recs,
		TasteProfile:      rctx.Profile,
		Insights:          profile.Insights(rctx.Profile, recs),
		RecommendationMap: BuildRecommendationMap(loved, recs),
		GeneratedAt:       nowFunc().UTC(),
	}, nil
}

// Fingerprint 从索引读取喜爱影片的分析结果生成指纹，结果按喜爱影片集合缓存。
// 未入库的影片先分析入库。
func (e *Engine) Fingerprint(ctx context.Context, loved []*core.Film) (taste.Fingerprint, error) {
	loved = compactFilms(loved)
	slugs := make([]string, 0, len(loved))
	for _, f := range loved {
		slugs = append(slugs, f.ID())
	}
	key := store.FingerprintKey(slugs)

	var fp taste.Fingerprint
	if hit, err := e.cache.Get(ctx, key, &fp); err == nil && hit {
		return fp, nil
	}

	if err := e.EnsureAnalyzed(ctx, loved); err != nil {
		return taste.Fingerprint{}, err
	}
	scored := make([]ScoredFilm, 0, len(loved))
	for _, f := range loved {
		rec, err := e.index.Get(ctx, f.ID())
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("film", f.ID()).Msg("film missing from index, skipped")
			continue
		}
		var scores map[string]float64
		if rec.Document.Analysis != nil {
			scores = rec.Document.Analysis.DimensionalScores
		}
		scored = append(scored, ScoredFilm{Film: f, Scores: scores})
	}

	fp = e.BuildFingerprint(scored)
	if err := e.cache.Set(ctx, key, fp); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("fingerprint cache write failed")
	}
	return fp, nil
}

func compactFilms(films []*core.Film) []*core.Film {
	out := make([]*core.Film, 0, len(films))
	seen := make(map[string]struct{}, len(films))
	for _, f := range films {
		id := f.ID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, f)
	}
	return out
}
