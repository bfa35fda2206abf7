// Package feedback 定义推荐曝光与评分事件的采集接口。
//
// 采集是旁路行为：Collector 的错误只记录日志，不影响推荐结果。
// 生产环境使用 ext/feedback/kafka，测试与命令行使用 MemoryCollector。
package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/filmtaste/core"
)

// Type 事件类型
type Type string

const (
	TypeImpression Type = "impression" // 推荐曝光
	TypeRated      Type = "rated"      // 用户评分
)

// Event 是单条反馈事件。
type Event struct {
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id"`
	Slug      string            `json:"slug"`
	Type      Type              `json:"type"`
	Timestamp int64             `json:"timestamp"`
	Position  int               `json:"position"`
	Score     float64           `json:"score,omitempty"`
	Rating    float64           `json:"rating,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Collector 反馈采集器（异步非阻塞）。
type Collector interface {
	RecordImpression(ctx context.Context, rctx *core.RecommendContext, recs []*core.Candidate) error
	RecordRated(ctx context.Context, userID string, films []*core.Film) error
	Close() error
}

var nowFunc = time.Now

// ImpressionEvents 把推荐结果转成曝光事件，位置从 0 开始。
func ImpressionEvents(rctx *core.RecommendContext, recs []*core.Candidate) []*Event {
	var requestID, userID string
	if rctx != nil {
		requestID, userID = rctx.RequestID, rctx.UserID
	}
	now := nowFunc().Unix()
	events := make([]*Event, 0, len(recs))
	for i, c := range recs {
		if c == nil {
			continue
		}
		ev := &Event{
			RequestID: requestID,
			UserID:    userID,
			Slug:      c.ID(),
			Type:      TypeImpression,
			Timestamp: now,
			Position:  i,
			Score:     c.Score,
		}
		if lbl, ok := c.Labels["recall_source"]; ok {
			ev.Labels = map[string]string{"recall_source": lbl.Value}
		}
		events = append(events, ev)
	}
	return events
}

// RatedEvents 把评分影片转成评分事件。
func RatedEvents(userID string, films []*core.Film) []*Event {
	now := nowFunc().Unix()
	events := make([]*Event, 0, len(films))
	for i, f := range films {
		id := f.ID()
		if id == "" {
			continue
		}
		events = append(events, &Event{
			UserID:    userID,
			Slug:      id,
			Type:      TypeRated,
			Timestamp: now,
			Position:  i,
			Rating:    f.UserRating,
		})
	}
	return events
}

// MemoryCollector 把事件保存在内存中。
type MemoryCollector struct {
	mu     sync.Mutex
	events []*Event
	closed bool
}

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

func (m *MemoryCollector) RecordImpression(_ context.Context, rctx *core.RecommendContext, recs []*core.Candidate) error {
	m.append(ImpressionEvents(rctx, recs))
	return nil
}

func (m *MemoryCollector) RecordRated(_ context.Context, userID string, films []*core.Film) error {
	m.append(RatedEvents(userID, films))
	return nil
}

func (m *MemoryCollector) append(events []*Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events = append(m.events, events...)
}

// Events 返回已采集事件的副本。
func (m *MemoryCollector) Events() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.events...)
}

func (m *MemoryCollector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Collector = (*MemoryCollector)(nil)
