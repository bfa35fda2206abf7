package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/similarity"
)

var _ core.FilmIndex = (*MemoryIndex)(nil)

// MemoryIndex 是内存实现的影片向量索引（暴力 cosine 检索）。
// 适合测试与小规模片库；生产环境使用 SQLiteIndex 或 Milvus。
type MemoryIndex struct {
	mu    sync.RWMutex
	dim   int
	order []string
	data  map[string]*core.FilmRecord
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{data: make(map[string]*core.FilmRecord)}
}

func (m *MemoryIndex) Name() string { return BackendMemory }

func (m *MemoryIndex) Put(_ context.Context, rec *core.FilmRecord) error {
	if rec == nil || rec.ID == "" {
		return core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "index: record id is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dim == 0 {
		m.dim = len(rec.Vector)
	} else if len(rec.Vector) != m.dim {
		return core.ErrVectorDimension
	}
	if _, ok := m.data[rec.ID]; !ok {
		m.order = append(m.order, rec.ID)
	}
	m.data[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *MemoryIndex) Get(_ context.Context, id string) (*core.FilmRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[id]
	if !ok {
		return nil, core.ErrIndexNotFound
	}
	return cloneRecord(rec), nil
}

// QueryNearest 计算与全部记录的 cosine 距离，按距离升序返回前 k 条；
// 距离相同时保持写入顺序。
func (m *MemoryIndex) QueryNearest(ctx context.Context, vector []float64, k int) ([]core.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dim > 0 && len(vector) != m.dim {
		return nil, core.ErrVectorDimension
	}

	out := make([]core.Neighbor, 0, len(m.order))
	for _, id := range m.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := m.data[id]
		out = append(out, core.Neighbor{
			ID:       id,
			Distance: similarity.Distance(vector, rec.Vector),
			Document: cloneDocument(rec.Document),
			Metadata: cloneMeta(rec.Metadata),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Len 返回记录数。
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryIndex) Close() error { return nil }

func cloneRecord(rec *core.FilmRecord) *core.FilmRecord {
	return &core.FilmRecord{
		ID:       rec.ID,
		Vector:   append([]float64(nil), rec.Vector...),
		Document: cloneDocument(rec.Document),
		Metadata: cloneMeta(rec.Metadata),
	}
}

func cloneDocument(doc core.FilmDocument) core.FilmDocument {
	out := core.FilmDocument{Film: *doc.Film.Clone(), Analysis: doc.Analysis}
	if doc.Analysis != nil {
		a := *doc.Analysis
		a.DimensionalScores = make(map[string]float64, len(doc.Analysis.DimensionalScores))
		for k, v := range doc.Analysis.DimensionalScores {
			a.DimensionalScores[k] = v
		}
		a.HumanConditionThemes = append([]string(nil), doc.Analysis.HumanConditionThemes...)
		out.Analysis = &a
	}
	return out
}

func cloneMeta(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
