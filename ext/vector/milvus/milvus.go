// Package milvus 提供基于 Milvus 的 core.FilmIndex 实现。
//
// 注意：此实现位于扩展包中，需要单独引入：
//
//	go get github.com/rushteam/filmtaste/ext/vector/milvus
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/rushteam/filmtaste/core"
)

// 字段名
const (
	FieldID       = "id"
	FieldVector   = "vector"
	FieldDocument = "document"
)

const (
	DefaultCollection = "films"
	defaultDimension  = 62
	maxVarChar        = 1024
	maxDocument       = 65535
)

// metaFields 是随向量一起存储的扁平元数据列。
var metaFields = []string{
	core.MetaTitle,
	core.MetaDirector,
	core.MetaYear,
	core.MetaGenres,
	core.MetaMood,
	core.MetaThemes,
	core.MetaAnalyzedAt,
}

// FilmIndex 把影片记录存入 Milvus collection，距离空间为 COSINE。
type FilmIndex struct {
	Address    string
	Username   string
	Password   string
	Database   string
	Collection string
	Dimension  int

	client *milvusclient.Client
}

type Option func(*FilmIndex)

func WithAuth(username, password string) Option {
	return func(s *FilmIndex) {
		s.Username = username
		s.Password = password
	}
}

func WithDatabase(database string) Option {
	return func(s *FilmIndex) { s.Database = database }
}

func WithCollection(name string) Option {
	return func(s *FilmIndex) { s.Collection = name }
}

func WithDimension(dim int) Option {
	return func(s *FilmIndex) { s.Dimension = dim }
}

// New 连接 Milvus，collection 不存在时创建并加载。
func New(ctx context.Context, address string, opts ...Option) (*FilmIndex, error) {
	s := newFilmIndex(address, opts...)
	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  s.Address,
		Username: s.Username,
		Password: s.Password,
		DBName:   s.Database,
	})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleVector, core.ErrorCodeUnavailable, "create milvus client", err)
	}
	s.client = client

	if err := s.ensureCollection(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	return s, nil
}

func newFilmIndex(address string, opts ...Option) *FilmIndex {
	s := &FilmIndex{
		Address:    address,
		Database:   "default",
		Collection: DefaultCollection,
		Dimension:  defaultDimension,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FilmIndex) Name() string { return "milvus" }

func (s *FilmIndex) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.Collection))
	if err != nil {
		return fmt.Errorf("milvus has collection failed: %w", err)
	}
	if !exists {
		idx := milvusclient.NewCreateIndexOption(s.Collection, FieldVector, index.NewAutoIndex(entity.COSINE))
		opt := milvusclient.NewCreateCollectionOption(s.Collection, schema(s.Collection, s.Dimension)).
			WithIndexOptions(idx)
		if err := s.client.CreateCollection(ctx, opt); err != nil {
			return fmt.Errorf("milvus create collection failed: %w", err)
		}
	}

	task, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.Collection))
	if err != nil {
		return fmt.Errorf("milvus load collection failed: %w", err)
	}
	return task.Await(ctx)
}

func schema(name string, dim int) *entity.Schema {
	sch := entity.NewSchema().
		WithName(name).
		WithField(entity.NewField().
			WithName(FieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxVarChar).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(FieldVector).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim))).
		WithField(entity.NewField().
			WithName(FieldDocument).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxDocument))
	for _, f := range metaFields {
		sch = sch.WithField(entity.NewField().
			WithName(f).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxVarChar))
	}
	return sch
}

// Put 以 upsert 写入记录，同 slug 覆盖。
func (s *FilmIndex) Put(ctx context.Context, rec *core.FilmRecord) error {
	if rec == nil || rec.ID == "" {
		return core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "index: record id is empty")
	}
	if len(rec.Vector) != s.Dimension {
		return core.ErrVectorDimension
	}
	cols, err := recordColumns(rec, s.Dimension)
	if err != nil {
		return err
	}
	if _, err := s.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(s.Collection, cols...)); err != nil {
		return fmt.Errorf("milvus upsert failed: %w", err)
	}
	return nil
}

func (s *FilmIndex) Get(ctx context.Context, id string) (*core.FilmRecord, error) {
	opt := milvusclient.NewQueryOption(s.Collection).
		WithFilter(FieldID + " == " + strconv.Quote(id)).
		WithOutputFields(outputFields(true)...)
	rs, err := s.client.Query(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("milvus query failed: %w", err)
	}
	if rs.ResultCount == 0 {
		return nil, core.ErrIndexNotFound
	}
	row, err := decodeRow(rs.GetColumn, 0, true)
	if err != nil {
		return nil, err
	}
	return &core.FilmRecord{ID: row.id, Vector: row.vector, Document: row.doc, Metadata: row.meta}, nil
}

// QueryNearest 返回最近的 k 条记录。Milvus 的 COSINE 分数是相似度，距离取 1 - score。
func (s *FilmIndex) QueryNearest(ctx context.Context, vector []float64, k int) ([]core.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) != s.Dimension {
		return nil, core.ErrVectorDimension
	}
	opt := milvusclient.NewSearchOption(s.Collection, k, []entity.Vector{entity.FloatVector(toFloat32(vector))}).
		WithOutputFields(outputFields(false)...)
	results, err := s.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	var out []core.Neighbor
	for _, rs := range results {
		if rs.Err != nil {
			return nil, fmt.Errorf("milvus search failed: %w", rs.Err)
		}
		for i := 0; i < rs.ResultCount; i++ {
			row, err := decodeRow(rs.GetColumn, i, false)
			if err != nil {
				return nil, err
			}
			if row.id == "" && rs.IDs != nil {
				row.id, _ = rs.IDs.GetAsString(i)
			}
			n := core.Neighbor{ID: row.id, Document: row.doc, Metadata: row.meta, Distance: 1}
			if i < len(rs.Scores) {
				n.Distance = 1 - float64(rs.Scores[i])
			}
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *FilmIndex) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close(context.Background())
}

func outputFields(withVector bool) []string {
	fields := append([]string{FieldID, FieldDocument}, metaFields...)
	if withVector {
		fields = append(fields, FieldVector)
	}
	return fields
}

func recordColumns(rec *core.FilmRecord, dim int) ([]column.Column, error) {
	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	cols := []column.Column{
		column.NewColumnVarChar(FieldID, []string{rec.ID}),
		column.NewColumnFloatVector(FieldVector, dim, [][]float32{toFloat32(rec.Vector)}),
		column.NewColumnVarChar(FieldDocument, []string{string(doc)}),
	}
	for _, f := range metaFields {
		cols = append(cols, column.NewColumnVarChar(f, []string{rec.Metadata[f]}))
	}
	return cols, nil
}

type row struct {
	id     string
	vector []float64
	doc    core.FilmDocument
	meta   map[string]string
}

// decodeRow 从结果列中取第 i 行；缺失的元数据列按空字符串处理。
func decodeRow(col func(string) column.Column, i int, withVector bool) (row, error) {
	var r row
	if c := col(FieldID); c != nil {
		r.id, _ = c.GetAsString(i)
	}
	if c := col(FieldDocument); c != nil {
		raw, err := c.GetAsString(i)
		if err != nil {
			return r, fmt.Errorf("read document: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &r.doc); err != nil {
			return r, fmt.Errorf("decode document %s: %w", r.id, err)
		}
	}
	r.meta = make(map[string]string, len(metaFields))
	for _, f := range metaFields {
		if c := col(f); c != nil {
			r.meta[f], _ = c.GetAsString(i)
		}
	}
	if withVector {
		c := col(FieldVector)
		if c == nil {
			return r, fmt.Errorf("vector column missing for %s", r.id)
		}
		v, err := c.Get(i)
		if err != nil {
			return r, fmt.Errorf("read vector: %w", err)
		}
		fv, ok := v.(entity.FloatVector)
		if !ok {
			return r, fmt.Errorf("unexpected vector type %T", v)
		}
		r.vector = toFloat64(fv)
	}
	return r, nil
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

func toFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}

var _ core.FilmIndex = (*FilmIndex)(nil)
