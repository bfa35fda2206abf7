// Package store 提供 core.Store（键值缓存）与 core.FilmIndex（影片向量索引）的实现。
//
// 接口定义在 core 包，这里只有实现：
//
//	var kv core.Store = store.NewMemoryStore()
//	var idx core.FilmIndex = store.NewMemoryIndex()
//	idx, err := store.NewSQLiteIndex("/var/lib/filmtaste/films.db")
package store

import (
	"fmt"

	"github.com/rushteam/filmtaste/core"
)

// ErrNotFound 与 core.ErrStoreNotFound 相同，便于包内直接使用。
var ErrNotFound = core.ErrStoreNotFound

// 存储后端名称。
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options 描述要打开的后端。
type Options struct {
	Backend    string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
}

// Open 按 Options 打开键值缓存与影片索引。
//   - memory：MemoryStore + MemoryIndex
//   - sqlite：SQLiteIndex + 同库的 SQLiteStore，评分历史与缓存随文件持久化
//   - redis：RedisStore + SQLiteIndex（SQLitePath 为空时使用 MemoryIndex）
func Open(opts Options) (core.Store, core.FilmIndex, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), NewMemoryIndex(), nil
	case BackendSQLite:
		idx, err := NewSQLiteIndex(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return idx.KV(), idx, nil
	case BackendRedis:
		kv, err := NewRedisStore(opts.RedisAddr, opts.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		if opts.SQLitePath == "" {
			return kv, NewMemoryIndex(), nil
		}
		idx, err := NewSQLiteIndex(opts.SQLitePath)
		if err != nil {
			_ = kv.Close()
			return nil, nil, err
		}
		return kv, idx, nil
	default:
		return nil, nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("unknown store backend %q", opts.Backend))
	}
}
