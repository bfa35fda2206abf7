package recommend

import (
	"errors"
	"fmt"

	"github.com/rushteam/filmtaste/config"
	"github.com/rushteam/filmtaste/filter"
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/service"
	"github.com/rushteam/filmtaste/store"
)

// Open 按应用配置组装 Engine：存储后端、带熔断的协作方、可选的配置驱动 pipeline。
// 调用方负责 Close。
func Open(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	kv, index, err := store.Open(store.Options{
		Backend:    cfg.Store.Backend,
		SQLitePath: cfg.Store.SQLitePath,
		RedisAddr:  cfg.Store.RedisAddr,
		RedisDB:    cfg.Store.RedisDB,
	})
	if err != nil {
		return nil, err
	}

	bf := filter.NewStoreBloom(kv, cfg.Store.BloomCapacity, cfg.Store.BloomFalsePositive)
	opts := []Option{
		WithStore(kv, cfg.Store.CacheTTL),
		WithBloom(bf),
		WithDefaults(cfg.Recommend),
	}

	clientOpts := []service.Option{service.WithTimeout(cfg.Collaborators.Timeout)}
	if cfg.Collaborators.APIKey != "" {
		clientOpts = append(clientOpts, service.WithAPIKey(cfg.Collaborators.APIKey))
	}
	if u := cfg.Collaborators.ScoringURL; u != "" {
		opts = append(opts, WithScorer(service.NewBreakerScorer(service.NewHTTPScorer(u, clientOpts...), cfg.Breaker)))
	}
	if u := cfg.Collaborators.MetadataURL; u != "" {
		opts = append(opts, WithMetadata(service.NewBreakerMetadata(service.NewHTTPMetadata(u, clientOpts...), cfg.Breaker)))
	}

	if path := cfg.Pipeline.Path; path != "" {
		pcfg, err := pipeline.Load(path)
		if err != nil {
			_ = kv.Close()
			_ = index.Close()
			return nil, fmt.Errorf("load pipeline: %w", err)
		}
		res := &config.Resources{Index: index, Store: kv, Bloom: bf, Recommend: cfg.Recommend}
		p, err := config.BuildPipeline(pcfg, res)
		if err != nil {
			_ = kv.Close()
			_ = index.Close()
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		opts = append(opts, WithPipeline(p))
	}

	log := logging.Component("engine")
	log.Info().
		Str("backend", cfg.Store.Backend).
		Str("index", index.Name()).
		Bool("scorer", cfg.Collaborators.ScoringURL != "").
		Bool("metadata", cfg.Collaborators.MetadataURL != "").
		Str("pipeline", cfg.Pipeline.Path).
		Msg("engine ready")
	return New(index, opts...), nil
}

// Close 释放索引与键值存储。
func (e *Engine) Close() error {
	var errs []error
	if e.index != nil {
		errs = append(errs, e.index.Close())
	}
	if e.kv != nil {
		errs = append(errs, e.kv.Close())
	}
	return errors.Join(errs...)
}
