// Package filmtaste 是影片口味指纹与推荐工具包。
//
// 设计要点：
// - 62 维口味空间：每部影片由打分协作方给出 1-7 分，喜爱影片的均值构成用户指纹
// - Pipeline-first: 推荐链路通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: 召回来源等标签全链路透传，用于解释与观测
// - 协作方失败不打断请求：打分、元数据、向量检索均有降级结果
//
// 对外入口见 recommend.Engine。
package filmtaste

import (
	"github.com/rushteam/filmtaste/pipeline"
	"github.com/rushteam/filmtaste/recommend"
)

// 轻量 facade：便于直接 import "filmtaste" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Engine   = recommend.Engine
	Request  = recommend.Request
	Response = recommend.Response
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
