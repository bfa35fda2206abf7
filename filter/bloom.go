package filter

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rushteam/filmtaste/core"
)

var _ BloomFilterChecker = (*StoreBloom)(nil)

// StoreBloom 是基于 core.Store 持久化的布隆过滤器（bits-and-blooms/bloom），
// 后端可以是 MemoryStore 或 RedisStore。用于记录长周期的评分历史，避免为每个用户保存完整列表。
//
//	checker := filter.NewStoreBloom(redisStore, 100000, 0.01)
//	adapter := filter.NewStoreAdapterWithBloomFilter(redisStore, checker)
//	exclusion := filter.NewExclusionFilter(adapter, "user:seen")
type StoreBloom struct {
	store core.Store

	// capacity 是预期元素数量，falsePositiveRate 是期望误判率
	capacity          uint
	falsePositiveRate float64

	// 本地缓存，避免频繁读取和反序列化
	mu    sync.RWMutex
	cache map[string]*bloom.BloomFilter
}

func NewStoreBloom(s core.Store, capacity uint, falsePositiveRate float64) *StoreBloom {
	if capacity == 0 {
		capacity = 10000
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}
	return &StoreBloom{
		store:             s,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
		cache:             make(map[string]*bloom.BloomFilter),
	}
}

// CheckInBloomFilter 实现 BloomFilterChecker。key 不存在表示一定不在。
func (b *StoreBloom) CheckInBloomFilter(ctx context.Context, key string, member string) (bool, error) {
	bf, err := b.load(ctx, key, false)
	if err != nil {
		return false, err
	}
	if bf == nil {
		return false, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bf.TestString(member), nil
}

// Add 向 key 对应的布隆过滤器批量添加成员并写回 Store，ttl 单位为秒，0 表示不过期。
func (b *StoreBloom) Add(ctx context.Context, key string, members []string, ttl int) error {
	bf, err := b.load(ctx, key, true)
	if err != nil {
		return err
	}

	b.mu.Lock()
	for _, m := range members {
		bf.AddString(m)
	}
	var buf bytes.Buffer
	_, err = bf.WriteTo(&buf)
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serialize bloom filter: %w", err)
	}

	if err := b.store.Set(ctx, key, buf.Bytes(), ttl); err != nil {
		return fmt.Errorf("save bloom filter: %w", err)
	}
	return nil
}

// ClearCache 清除本地缓存，下次检查时重新从 Store 加载。
func (b *StoreBloom) ClearCache() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[string]*bloom.BloomFilter)
}

func (b *StoreBloom) load(ctx context.Context, key string, create bool) (*bloom.BloomFilter, error) {
	b.mu.RLock()
	cached, ok := b.cache[key]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := b.store.Get(ctx, key)
	var bf *bloom.BloomFilter
	switch {
	case core.IsStoreNotFound(err):
		if !create {
			return nil, nil
		}
		bf = bloom.NewWithEstimates(b.capacity, b.falsePositiveRate)
	case err != nil:
		return nil, fmt.Errorf("get bloom filter: %w", err)
	default:
		bf = &bloom.BloomFilter{}
		if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("deserialize bloom filter: %w", err)
		}
	}

	b.mu.Lock()
	if existing, ok := b.cache[key]; ok {
		bf = existing
	} else {
		b.cache[key] = bf
	}
	b.mu.Unlock()
	return bf, nil
}
