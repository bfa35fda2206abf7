package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/similarity"
	"github.com/rushteam/filmtaste/store/migrations"
)

var _ core.FilmIndex = (*SQLiteIndex)(nil)

// SQLiteIndex 把影片记录持久化到单个 SQLite 文件：
// slug 主键、向量（float64 小端序 BLOB）、合并 JSON 文档、扁平元数据列。
// 最近邻为全表扫描的暴力 cosine，适合万级以内片库。
type SQLiteIndex struct {
	db   *sql.DB
	path string

	// 写入串行化，seq 单调递增用于稳定排序
	mu sync.Mutex
}

// NewSQLiteIndex 打开（或创建）path 处的数据库并执行迁移。
// path 为 ":memory:" 时使用内存数据库。
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "sqlite: path is empty")
	}
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// 每个连接各自一份内存库
		db.SetMaxOpenConns(1)
	}

	idx := &SQLiteIndex{db: db, path: path}
	if err := idx.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) Name() string { return BackendSQLite }

// Path 返回数据库文件路径。
func (s *SQLiteIndex) Path() string { return s.path }

func (s *SQLiteIndex) Close() error { return s.db.Close() }

func (s *SQLiteIndex) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Put 按 slug upsert；首条记录确定向量维度，之后维度不一致返回 ErrVectorDimension。
func (s *SQLiteIndex) Put(ctx context.Context, rec *core.FilmRecord) error {
	if rec == nil || rec.ID == "" {
		return core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "index: record id is empty")
	}
	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var dim sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT dimension FROM films LIMIT 1").Scan(&dim); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading dimension: %w", err)
	}
	if dim.Valid && int(dim.Int64) != len(rec.Vector) {
		return core.ErrVectorDimension
	}

	meta := rec.Metadata
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO films (id, vector, dimension, document, title, director, year, genres, mood, themes, analyzed_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM films))
		ON CONFLICT(id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			document = excluded.document,
			title = excluded.title,
			director = excluded.director,
			year = excluded.year,
			genres = excluded.genres,
			mood = excluded.mood,
			themes = excluded.themes,
			analyzed_at = excluded.analyzed_at
	`, rec.ID, float64SliceToBytes(rec.Vector), len(rec.Vector), string(doc),
		meta[core.MetaTitle], meta[core.MetaDirector], meta[core.MetaYear], meta[core.MetaGenres],
		meta[core.MetaMood], meta[core.MetaThemes], meta[core.MetaAnalyzedAt])
	if err != nil {
		return fmt.Errorf("saving film %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteIndex) Get(ctx context.Context, id string) (*core.FilmRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, vector, document, title, director, year, genres, mood, themes, analyzed_at
		FROM films WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrIndexNotFound
	}
	return rec, err
}

// QueryNearest 扫描全部记录计算 cosine 距离，按距离升序、写入顺序稳定返回前 k 条。
func (s *SQLiteIndex) QueryNearest(ctx context.Context, vector []float64, k int) ([]core.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vector, document, title, director, year, genres, mood, themes, analyzed_at
		FROM films ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying films: %w", err)
	}
	defer rows.Close()

	var out []core.Neighbor
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if len(rec.Vector) != len(vector) {
			return nil, core.ErrVectorDimension
		}
		out = append(out, core.Neighbor{
			ID:       rec.ID,
			Distance: similarity.Distance(vector, rec.Vector),
			Document: rec.Document,
			Metadata: rec.Metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating films: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Count 返回记录数。
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM films").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*core.FilmRecord, error) {
	var (
		rec     core.FilmRecord
		blob    []byte
		docJSON string
		meta    [7]string
	)
	if err := row.Scan(&rec.ID, &blob, &docJSON,
		&meta[0], &meta[1], &meta[2], &meta[3], &meta[4], &meta[5], &meta[6]); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(docJSON), &rec.Document); err != nil {
		return nil, fmt.Errorf("unmarshalling document %s: %w", rec.ID, err)
	}
	rec.Vector = bytesToFloat64Slice(blob)
	rec.Metadata = map[string]string{
		core.MetaTitle:      meta[0],
		core.MetaDirector:   meta[1],
		core.MetaYear:       meta[2],
		core.MetaGenres:     meta[3],
		core.MetaMood:       meta[4],
		core.MetaThemes:     meta[5],
		core.MetaAnalyzedAt: meta[6],
	}
	return &rec, nil
}

func float64SliceToBytes(floats []float64) []byte {
	buf := make([]byte, len(floats)*8)
	for i, f := range floats {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func bytesToFloat64Slice(data []byte) []float64 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float64, len(data)/8)
	for i := range floats {
		floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return floats
}
