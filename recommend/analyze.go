package recommend

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/dimension"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/recall"
	"github.com/rushteam/filmtaste/service"
	"github.com/rushteam/filmtaste/store"
	"github.com/rushteam/filmtaste/taste"
)

// nowFunc 便于测试固定 analyzed_at。
var nowFunc = time.Now

// Analyze 返回影片的分析结果：优先读缓存，其次调用打分协作方，都不可用时返回 DefaultAnalysis。
func (e *Engine) Analyze(ctx context.Context, film *core.Film) (*core.Analysis, error) {
	key := store.AnalysisKey(film.ID())
	var cached core.Analysis
	if hit, err := e.cache.Get(ctx, key, &cached); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("film", film.ID()).Msg("analysis cache read failed")
	} else if hit {
		return &cached, nil
	}

	if e.scorer == nil {
		return core.DefaultAnalysis(), nil
	}
	a, err := e.scorer.Score(ctx, film)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.Ctx(ctx).Warn().Err(err).Str("film", film.ID()).Msg("scorer failed, using default analysis")
		return core.DefaultAnalysis(), nil
	}
	if a == nil {
		return core.DefaultAnalysis(), nil
	}
	if !a.Fallback {
		if err := e.cache.Set(ctx, key, a); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("film", film.ID()).Msg("analysis cache write failed")
		}
	}
	return a, nil
}

// AnalyzeAndStore 分析影片并写入索引。已存在时不做任何事并返回 false。
func (e *Engine) AnalyzeAndStore(ctx context.Context, film *core.Film) (bool, error) {
	if film == nil || film.ID() == "" {
		return false, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, "film has no title")
	}
	if _, err := e.index.Get(ctx, film.ID()); err == nil {
		return false, nil
	} else if !core.IsNotFound(err) {
		return false, fmt.Errorf("lookup %s: %w", film.ID(), err)
	}

	film = e.complete(ctx, film)
	a, err := e.Analyze(ctx, film)
	if err != nil {
		return false, err
	}
	set, report := dimension.Decode(a.DimensionalScores)
	if !report.Clean() {
		logging.Ctx(ctx).Debug().
			Str("film", film.ID()).
			Strs("unknown", report.Unknown).
			Strs("invalid", report.Invalid).
			Msg("dropped dimensional scores")
	}
	vec := taste.FilmVector(set)

	rec := core.NewFilmRecord(film, a, vec.Slice(), nowFunc())
	if err := e.index.Put(ctx, rec); err != nil {
		return false, fmt.Errorf("store %s: %w", film.ID(), err)
	}
	logging.Ctx(ctx).Info().
		Str("film", film.ID()).
		Int("scored_dimensions", set.Len()).
		Bool("fallback", a.Fallback).
		Msg("film analyzed")
	return true, nil
}

// complete 在影片缺少导演与类型时用元数据协作方补全；协作方返回的 fallback 记录不覆盖调用方字段。
func (e *Engine) complete(ctx context.Context, film *core.Film) *core.Film {
	if e.metadata == nil || film.Director != "" || len(film.Genres) > 0 {
		return film
	}
	meta, err := e.metadata.Lookup(ctx, film.Title, film.Year)
	if err != nil || meta == nil || meta.Source == service.SourceFallback {
		return film
	}
	out := meta.Clone()
	out.Slug = film.ID()
	out.Title = film.Title
	out.UserRating = film.UserRating
	if film.Year > 0 {
		out.Year = film.Year
	}
	return out
}

// EnsureAnalyzed 并发确保影片都已写入索引，并发度为 MaxConcurrent。
// 单部影片失败只记录日志；仅在 context 取消时返回错误。
func (e *Engine) EnsureAnalyzed(ctx context.Context, films []*core.Film) error {
	eg, egCtx := errgroup.WithContext(ctx)
	if n := e.defaults.MaxConcurrent; n > 0 {
		eg.SetLimit(n)
	}
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

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			if _, err := e.AnalyzeAndStore(egCtx, f); err != nil {
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				logging.Ctx(ctx).Warn().Err(err).Str("film", id).Msg("analyze and store failed")
			}
			return nil
		})
	}
	return eg.Wait()
}

// FindSimilar 返回与已入库影片最相似的 k 部影片。
func (e *Engine) FindSimilar(ctx context.Context, film *core.Film, k int) ([]*core.Candidate, error) {
	src := &recall.SimilarSource{Index: e.index, Seed: film, K: k}
	return src.Recall(ctx, nil)
}

// FilmVector 读取已入库影片的向量。
func (e *Engine) FilmVector(ctx context.Context, slug string) (dimension.Vector, error) {
	rec, err := e.index.Get(ctx, slug)
	if err != nil {
		return dimension.Vector{}, err
	}
	return dimension.VectorFromSlice(rec.Vector)
}
