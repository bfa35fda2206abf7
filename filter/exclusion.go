package filter

import (
	"context"

	"github.com/rushteam/filmtaste/core"
)

// ExclusionFilter 过滤掉用户已看过/已评分的影片。
// 数据源按顺序检查：
//  1. 请求级排除集合 rctx.Exclude（本次请求的全部评分影片）
//  2. Store 中的历史评分列表，key 为 {KeyPrefix}:{UserID}
//  3. 历史评分布隆过滤器，key 为 {KeyPrefix}:bloom:{UserID}，可能误判为已看过
type ExclusionFilter struct {
	// Store 用于读取跨请求的评分历史（可选）
	Store SeenStore

	// KeyPrefix 默认 "user:seen"
	KeyPrefix string
}

// SeenStore 是评分历史存储接口。
type SeenStore interface {
	// GetSeenFilms 获取用户评分过的影片 slug 列表
	GetSeenFilms(ctx context.Context, userID string, keyPrefix string) ([]string, error)

	// CheckSeenInBloomFilter 返回 true 表示可能看过（存在误判可能），false 表示一定没看过
	CheckSeenInBloomFilter(ctx context.Context, userID string, slug string, keyPrefix string) (bool, error)
}

// NewExclusionFilter 创建排除过滤器；storeAdapter 为 nil 时只检查请求级排除集合。
func NewExclusionFilter(storeAdapter *StoreAdapter, keyPrefix string) *ExclusionFilter {
	var store SeenStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &ExclusionFilter{
		Store:     store,
		KeyPrefix: keyPrefix,
	}
}

func (f *ExclusionFilter) Name() string {
	return "filter.exclusion"
}

func (f *ExclusionFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Candidate,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	id := item.ID()
	if id == "" {
		return true, nil
	}
	if rctx.IsExcluded(id) {
		return true, nil
	}

	if f.Store == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "user:seen"
	}

	seen, err := f.Store.GetSeenFilms(ctx, rctx.UserID, keyPrefix)
	if err == nil {
		for _, s := range seen {
			if s == id {
				return true, nil
			}
		}
	} else if !core.IsStoreNotFound(err) {
		return false, err
	}

	hit, err := f.Store.CheckSeenInBloomFilter(ctx, rctx.UserID, id, keyPrefix)
	if err != nil {
		return false, err
	}
	return hit, nil
}
