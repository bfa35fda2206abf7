package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/metrics"
)

// 缓存 key 前缀
const (
	FingerprintKeyPrefix = "fingerprint:"
	AnalysisKeyPrefix    = "analysis:"
)

// JSONCache 在 core.Store 之上以 JSON 编码读写结构体，命中情况计入 metrics。
type JSONCache struct {
	Store core.Store
	TTL   int // 秒，0 表示不过期
}

func NewJSONCache(s core.Store, ttl int) *JSONCache {
	return &JSONCache{Store: s, TTL: ttl}
}

// Get 读取 key 并解码到 out。未命中返回 (false, nil)。
func (c *JSONCache) Get(ctx context.Context, key string, out any) (bool, error) {
	if c == nil || c.Store == nil {
		return false, nil
	}
	data, err := c.Store.Get(ctx, key)
	if core.IsStoreNotFound(err) {
		metrics.RecordCache(false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		// 旧格式或损坏数据按未命中处理
		metrics.RecordCache(false)
		return false, nil
	}
	metrics.RecordCache(true)
	return true, nil
}

// Set 编码并写入 key。
func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	if c == nil || c.Store == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Store.Set(ctx, key, data, c.TTL)
}

// FingerprintKey 由喜爱影片 slug 集合生成缓存 key，与顺序和重复无关。
func FingerprintKey(slugs []string) string {
	uniq := make(map[string]struct{}, len(slugs))
	sorted := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if _, ok := uniq[s]; ok || s == "" {
			continue
		}
		uniq[s] = struct{}{}
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return FingerprintKeyPrefix + hex.EncodeToString(sum[:16])
}

// AnalysisKey 返回单部影片分析结果的缓存 key。
func AnalysisKey(slug string) string {
	return AnalysisKeyPrefix + slug
}
