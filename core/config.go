package core

import "time"

// LovedRatingThreshold 是"喜爱影片"的评分下限（5 星制）。
const LovedRatingThreshold = 4.0

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultNumRecommendations 返回默认的推荐数量
	DefaultNumRecommendations() int

	// DefaultDiversityFactor 返回默认的多样性因子
	DefaultDiversityFactor() float64

	// DefaultNeighborsPerFilm 返回每部种子影片的最近邻数量
	DefaultNeighborsPerFilm() int

	// DefaultMaxSeedFilms 返回参与召回的种子影片上限（控制协作方调用成本）
	DefaultMaxSeedFilms() int

	// DefaultTimeout 返回单个召回源的超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultNumRecommendations() int {
	return 20
}

func (c *DefaultRecommendConfig) DefaultDiversityFactor() float64 {
	return 0.3
}

func (c *DefaultRecommendConfig) DefaultNeighborsPerFilm() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultMaxSeedFilms() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultTimeout() time.Duration {
	return 2 * time.Second
}
