package service

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/pkg/metrics"
)

// BreakerConfig 是熔断器参数。
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
}

// DefaultBreakerConfig 连续失败 5 次熔断，30 秒后半开。
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

func newBreaker[T any](name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log := logging.Component("breaker")
			log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
		},
	})
}

// IsBreakerOpen 判断错误是否来自熔断器拒绝。
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

var _ core.Scorer = (*BreakerScorer)(nil)

// BreakerScorer 为打分协作方加上熔断；失败或熔断时返回 core.DefaultAnalysis()，不返回错误。
type BreakerScorer struct {
	next core.Scorer
	cb   *gobreaker.CircuitBreaker[*core.Analysis]
}

func NewBreakerScorer(next core.Scorer, cfg BreakerConfig) *BreakerScorer {
	return &BreakerScorer{next: next, cb: newBreaker[*core.Analysis]("scorer", cfg)}
}

func (s *BreakerScorer) Score(ctx context.Context, film *core.Film) (*core.Analysis, error) {
	a, err := s.cb.Execute(func() (*core.Analysis, error) {
		return s.next.Score(ctx, film)
	})
	if err != nil || a == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.RecordFallback("scorer")
		logging.Ctx(ctx).Warn().Err(err).
			Str("film", film.ID()).
			Bool("breaker_open", IsBreakerOpen(err)).
			Msg("scorer unavailable, using default analysis")
		return core.DefaultAnalysis(), nil
	}
	return a, nil
}

// State 返回熔断器状态，便于观测。
func (s *BreakerScorer) State() gobreaker.State { return s.cb.State() }

var _ core.MetadataProvider = (*BreakerMetadata)(nil)

// BreakerMetadata 为元数据协作方加上熔断；失败或熔断时返回 FallbackFilm(title)。
type BreakerMetadata struct {
	next core.MetadataProvider
	cb   *gobreaker.CircuitBreaker[*core.Film]
}

func NewBreakerMetadata(next core.MetadataProvider, cfg BreakerConfig) *BreakerMetadata {
	return &BreakerMetadata{next: next, cb: newBreaker[*core.Film]("metadata", cfg)}
}

func (m *BreakerMetadata) Lookup(ctx context.Context, title string, year int) (*core.Film, error) {
	f, err := m.cb.Execute(func() (*core.Film, error) {
		return m.next.Lookup(ctx, title, year)
	})
	if err != nil || f == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.RecordFallback("metadata")
		logging.Ctx(ctx).Warn().Err(err).
			Str("title", title).
			Bool("breaker_open", IsBreakerOpen(err)).
			Msg("metadata unavailable, using fallback film")
		return FallbackFilm(title), nil
	}
	return f, nil
}

// State 返回熔断器状态。
func (m *BreakerMetadata) State() gobreaker.State { return m.cb.State() }
