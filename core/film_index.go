package core

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// FilmIndex 是影片向量存储的领域接口（外部向量库协作方）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store、ext/vector/milvus）实现
//   - 只包含 put / get / 最近邻查询三个操作，索引内部实现不属于核心
//   - 距离空间为 cosine：Distance = 1 - similarity
//
// 实现：
//   - store.MemoryIndex：内存暴力检索，用于测试/开发
//   - store.SQLiteIndex：SQLite 持久化
//   - ext/vector/milvus.FilmIndex：Milvus
type FilmIndex interface {
	// Name 返回后端名称（用于日志/监控）
	Name() string

	// Put 写入（或覆盖）一条影片记录
	Put(ctx context.Context, rec *FilmRecord) error

	// Get 按 slug 读取，不存在时返回 ErrIndexNotFound
	Get(ctx context.Context, id string) (*FilmRecord, error)

	// QueryNearest 返回与 vector 最近的 k 条记录，按距离升序
	QueryNearest(ctx context.Context, vector []float64, k int) ([]Neighbor, error)

	// Close 关闭连接/释放资源
	Close() error
}

// FilmRecord 是每部影片的持久化记录：slug 主键、原始向量、合并后的 JSON 文档、扁平元数据。
type FilmRecord struct {
	ID       string            `json:"id"`
	Vector   []float64         `json:"vector"`
	Document FilmDocument      `json:"document"`
	Metadata map[string]string `json:"metadata"`
}

// FilmDocument 是元数据与分析结果合并后的文档。
type FilmDocument struct {
	Film
	Analysis *Analysis `json:"analysis,omitempty"`
}

// Neighbor 是最近邻查询的单条结果。
type Neighbor struct {
	ID       string
	Distance float64
	Document FilmDocument
	Metadata map[string]string
}

// 元数据列名
const (
	MetaTitle      = "title"
	MetaDirector   = "director"
	MetaYear       = "year"
	MetaGenres     = "genres"
	MetaMood       = "mood"
	MetaThemes     = "themes"
	MetaAnalyzedAt = "analyzed_at"
)

// NewFilmRecord 组装一条索引记录，元数据列为扁平字符串，多值以 '|' 连接。
func NewFilmRecord(film *Film, analysis *Analysis, vector []float64, analyzedAt time.Time) *FilmRecord {
	doc := FilmDocument{Film: *film.Clone(), Analysis: analysis}
	analysis.Enrich(&doc.Film)
	year := ""
	if doc.Year > 0 {
		year = strconv.Itoa(doc.Year)
	}
	return &FilmRecord{
		ID:       film.ID(),
		Vector:   append([]float64(nil), vector...),
		Document: doc,
		Metadata: map[string]string{
			MetaTitle:      doc.Title,
			MetaDirector:   doc.Director,
			MetaYear:       year,
			MetaGenres:     strings.Join(doc.Genres, "|"),
			MetaMood:       doc.Mood,
			MetaThemes:     strings.Join(doc.Themes, "|"),
			MetaAnalyzedAt: analyzedAt.UTC().Format(time.RFC3339),
		},
	}
}

// Index 错误定义（使用统一的 DomainError）
var (
	// ErrIndexNotFound 表示 id 不存在
	ErrIndexNotFound = NewDomainError(ModuleVector, ErrorCodeNotFound, "index: film not found")

	// ErrVectorDimension 表示向量长度与索引不一致
	ErrVectorDimension = NewDomainError(ModuleVector, ErrorCodeInvalidInput, "index: vector dimension mismatch")
)
