package filter

import (
	"context"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/utils"
)

// BlacklistFilter 是全局黑名单过滤器（例如下架影片），按 slug 比较。
type BlacklistFilter struct {
	// Slugs 是内存中的黑名单；标题也可以，构造时会统一转成 slug
	Slugs []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string

	set map[string]struct{}
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单 slug 列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(titles []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	f := &BlacklistFilter{Slugs: titles, Store: store, Key: key}
	f.set = make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if s := utils.Slug(t); s != "" {
			f.set[s] = struct{}{}
		}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Candidate,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	id := item.ID()

	if f.set != nil {
		if _, ok := f.set[id]; ok {
			return true, nil
		}
	} else {
		for _, s := range f.Slugs {
			if utils.Slug(s) == id {
				return true, nil
			}
		}
	}

	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		for _, s := range blacklist {
			if utils.Slug(s) == id {
				return true, nil
			}
		}
	}
	return false, nil
}
