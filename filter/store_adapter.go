package filter

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/filmtaste/core"
)

// BloomFilterChecker 是布隆过滤器检查器接口。
type BloomFilterChecker interface {
	// CheckInBloomFilter 返回 true 表示可能存在（存在误判可能），false 表示一定不存在
	CheckInBloomFilter(ctx context.Context, key string, member string) (bool, error)
}

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 列表数据统一以 JSON 字符串数组存储。
type StoreAdapter struct {
	store core.Store

	// BloomFilterChecker 是可选的布隆过滤器检查器；为 nil 时布隆检查恒为 false
	BloomFilterChecker BloomFilterChecker
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// NewStoreAdapterWithBloomFilter 创建一个带布隆过滤器检查器的 core.Store 适配器。
func NewStoreAdapterWithBloomFilter(s core.Store, checker BloomFilterChecker) *StoreAdapter {
	return &StoreAdapter{
		store:              s,
		BloomFilterChecker: checker,
	}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	return a.getList(ctx, key)
}

// SetBlacklist 写入黑名单。
func (a *StoreAdapter) SetBlacklist(ctx context.Context, key string, slugs []string) error {
	return a.setList(ctx, key, slugs)
}

// GetSeenFilms 读取用户评分历史，key 为 {keyPrefix}:{userID}。
func (a *StoreAdapter) GetSeenFilms(ctx context.Context, userID string, keyPrefix string) ([]string, error) {
	return a.getList(ctx, keyPrefix+":"+userID)
}

// SetSeenFilms 覆盖写入用户评分历史。
func (a *StoreAdapter) SetSeenFilms(ctx context.Context, userID string, keyPrefix string, slugs []string) error {
	return a.setList(ctx, keyPrefix+":"+userID, slugs)
}

// SeenBloomKey 返回用户评分历史布隆过滤器的 key。
func SeenBloomKey(keyPrefix, userID string) string {
	return fmt.Sprintf("%s:bloom:%s", keyPrefix, userID)
}

// CheckSeenInBloomFilter 检查影片是否在用户评分历史布隆过滤器中。
func (a *StoreAdapter) CheckSeenInBloomFilter(ctx context.Context, userID string, slug string, keyPrefix string) (bool, error) {
	if a.BloomFilterChecker == nil {
		return false, nil
	}
	return a.BloomFilterChecker.CheckInBloomFilter(ctx, SeenBloomKey(keyPrefix, userID), slug)
}

func (a *StoreAdapter) getList(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", key, err)
	}
	return ids, nil
}

func (a *StoreAdapter) setList(ctx context.Context, key string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}
