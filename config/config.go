// Package config 负责应用配置加载（koanf：默认值 -> YAML 文件 -> 环境变量）
// 与配置驱动的 pipeline Node 注册表。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/service"
)

// EnvPrefix 是环境变量前缀：FILMTASTE_STORE_BACKEND -> store.backend
const EnvPrefix = "FILMTASTE_"

// ConfigPathEnvVar 指定配置文件路径。
const ConfigPathEnvVar = "FILMTASTE_CONFIG"

// Config 是应用配置。
type Config struct {
	Logging       logging.Config        `koanf:"logging"`
	Store         Store                 `koanf:"store"`
	Recommend     Recommend             `koanf:"recommend"`
	Breaker       service.BreakerConfig `koanf:"breaker"`
	Collaborators Collaborators         `koanf:"collaborators"`
	Pipeline      Pipeline              `koanf:"pipeline"`
}

// Store 存储后端配置。
type Store struct {
	Backend    string `koanf:"backend" validate:"oneof=memory sqlite redis"`
	SQLitePath string `koanf:"sqlite_path" validate:"required_if=Backend sqlite"`
	RedisAddr  string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB    int    `koanf:"redis_db" validate:"gte=0"`
	// CacheTTL 指纹/分析缓存过期时间（秒），0 表示不过期
	CacheTTL int `koanf:"cache_ttl" validate:"gte=0"`
	// BloomCapacity 与 BloomFalsePositive 控制评分历史布隆过滤器
	BloomCapacity      uint    `koanf:"bloom_capacity" validate:"gte=1"`
	BloomFalsePositive float64 `koanf:"bloom_false_positive" validate:"gt=0,lt=1"`
}

// Recommend 推荐默认参数，实现 core.RecommendConfig。
type Recommend struct {
	NumRecommendations int           `koanf:"num_recommendations" validate:"gte=1,lte=200"`
	DiversityFactor    float64       `koanf:"diversity_factor" validate:"gte=0,lte=1"`
	NeighborsPerFilm   int           `koanf:"neighbors_per_film" validate:"gte=1"`
	MaxSeedFilms       int           `koanf:"max_seed_films" validate:"gte=1"`
	MaxConcurrent      int           `koanf:"max_concurrent" validate:"gte=1"`
	SourceTimeout      time.Duration `koanf:"source_timeout" validate:"gte=0"`
}

func (r Recommend) DefaultNumRecommendations() int  { return r.NumRecommendations }
func (r Recommend) DefaultDiversityFactor() float64 { return r.DiversityFactor }
func (r Recommend) DefaultNeighborsPerFilm() int    { return r.NeighborsPerFilm }
func (r Recommend) DefaultMaxSeedFilms() int        { return r.MaxSeedFilms }
func (r Recommend) DefaultTimeout() time.Duration   { return r.SourceTimeout }

// Collaborators 外部协作方地址。为空时对应协作方不可用（使用 fallback）。
type Collaborators struct {
	ScoringURL  string        `koanf:"scoring_url" validate:"omitempty,url"`
	MetadataURL string        `koanf:"metadata_url" validate:"omitempty,url"`
	APIKey      string        `koanf:"api_key"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Pipeline 可选的 pipeline YAML/JSON 路径，为空时使用内置链路。
type Pipeline struct {
	Path string `koanf:"path"`
}

// DefaultRecommend 返回推荐默认参数，取值来自 core.DefaultRecommendConfig。
func DefaultRecommend() Recommend {
	return FromRecommendConfig(&core.DefaultRecommendConfig{})
}

// FromRecommendConfig 把任意 core.RecommendConfig 转成配置结构，MaxConcurrent 取 4。
func FromRecommendConfig(rc core.RecommendConfig) Recommend {
	return Recommend{
		NumRecommendations: rc.DefaultNumRecommendations(),
		DiversityFactor:    rc.DefaultDiversityFactor(),
		NeighborsPerFilm:   rc.DefaultNeighborsPerFilm(),
		MaxSeedFilms:       rc.DefaultMaxSeedFilms(),
		MaxConcurrent:      4,
		SourceTimeout:      rc.DefaultTimeout(),
	}
}

// Default 返回默认配置。
func Default() *Config {
	lc := logging.DefaultConfig()
	lc.Output = nil
	return &Config{
		Logging: lc,
		Store: Store{
			Backend:            "memory",
			CacheTTL:           24 * 3600,
			BloomCapacity:      10000,
			BloomFalsePositive: 0.01,
		},
		Recommend: DefaultRecommend(),
		Breaker:   service.DefaultBreakerConfig(),
		Collaborators: Collaborators{
			Timeout: service.DefaultTimeout,
		},
	}
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载并校验。
// path 为空时读取 FILMTASTE_CONFIG；两者都为空则跳过文件层。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate 按 validate 标签校验配置。
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// envTransformFunc 去掉前缀并把第一个 '_' 作为分节符：
// FILMTASTE_STORE_SQLITE_PATH -> store.sqlite_path
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	return strings.Replace(key, "_", ".", 1)
}
