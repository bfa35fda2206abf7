package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/filter"
)

// RecordRated 把影片追加到用户的跨请求评分历史，之后的推荐会排除它们。
// 未配置 Store 时返回 NOT_SUPPORTED。
//
// 同一 Engine 内对同一用户的更新是串行的；多个进程共享同一 Store 时，
// 并发写入仍可能丢失历史列表中的部分追加，此时由布隆过滤器兜底排除。
func (e *Engine) RecordRated(ctx context.Context, userID string, films []*core.Film) error {
	if userID == "" {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, "user id is empty")
	}
	if e.kv == nil {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeNotSupported, "no store configured")
	}
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	adapter := filter.NewStoreAdapter(e.kv)

	existing, err := adapter.GetSeenFilms(ctx, userID, SeenKeyPrefix)
	if err != nil && !core.IsNotFound(err) {
		return fmt.Errorf("read history: %w", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(films))
	merged := make([]string, 0, len(existing)+len(films))
	added := make([]string, 0, len(films))
	for _, id := range existing {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, f := range films {
		id := f.ID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil
	}

	if err := adapter.SetSeenFilms(ctx, userID, SeenKeyPrefix, merged); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if e.bloom != nil {
		if err := e.bloom.Add(ctx, filter.SeenBloomKey(SeenKeyPrefix, userID), added, 0); err != nil {
			return fmt.Errorf("update bloom: %w", err)
		}
	}
	return nil
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	mu, _ := e.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
