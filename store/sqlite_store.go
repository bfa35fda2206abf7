package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rushteam/filmtaste/core"
)

var _ core.Store = (*SQLiteStore)(nil)

// sqliteNow 便于测试过期逻辑。
var sqliteNow = time.Now

// SQLiteStore 是与 SQLiteIndex 共用同一数据库文件的 core.Store，
// 评分历史、布隆过滤器与指纹缓存因此在进程重启后仍然保留。
// 过期时间以 unix 秒存储，0 表示不过期；过期记录在读取时惰性删除。
type SQLiteStore struct {
	db *sql.DB
}

// KV 返回共用底层连接的键值存储。数据库由 SQLiteIndex.Close 关闭，SQLiteStore.Close 不做任何事。
func (s *SQLiteIndex) KV() *SQLiteStore {
	return &SQLiteStore{db: s.db}
}

func (s *SQLiteStore) Name() string { return BackendSQLite }

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT value, expires_at FROM kv WHERE key = ?", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	if expiresAt > 0 && expiresAt <= sqliteNow().Unix() {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ? AND expires_at = ?", key, expiresAt)
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	_, err := s.db.ExecContext(ctx, upsertKV, key, value, expiresAt(ttl))
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := s.Get(ctx, k)
		if core.IsStoreNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (s *SQLiteStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exp := expiresAt(ttl)
	for k, v := range kvs {
		if _, err := tx.ExecContext(ctx, upsertKV, k, v, exp); err != nil {
			return fmt.Errorf("kv set %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return nil }

const upsertKV = `
	INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
`

func expiresAt(ttl []int) int64 {
	if len(ttl) > 0 && ttl[0] > 0 {
		return sqliteNow().Add(time.Duration(ttl[0]) * time.Second).Unix()
	}
	return 0
}
