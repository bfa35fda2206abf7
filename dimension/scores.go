package dimension

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/filmtaste/core"
)

// 分数取值范围与中性值。
const (
	MinScore     = 1.0
	MaxScore     = 7.0
	NeutralScore = 4.0
)

// ScoreSet 是单部影片的维度分数：定长数组 + 存在掩码。
// 缺失的维度不参与聚合，由聚合方用中性值补齐。
type ScoreSet struct {
	values  [Count]float64
	present [Count]bool
}

// ValidScore 判断分数是否有限且在 [1,7] 内。
func ValidScore(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= MinScore && v <= MaxScore
}

// Set 写入一个维度分数；越界的 ID 或非法分数返回 INVALID_INPUT。
func (s *ScoreSet) Set(id ID, v float64) error {
	if !id.Valid() {
		return core.NewDomainError(core.ModuleDimension, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dimension: unknown id %d", int(id)))
	}
	if !ValidScore(v) {
		return core.NewDomainError(core.ModuleDimension, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dimension: score %v for %s outside [1,7]", v, id))
	}
	s.values[id] = v
	s.present[id] = true
	return nil
}

// Get 读取一个维度分数；缺失时 ok 为 false。
func (s ScoreSet) Get(id ID) (float64, bool) {
	if !id.Valid() || !s.present[id] {
		return 0, false
	}
	return s.values[id], true
}

// Has 判断维度是否有分数。
func (s ScoreSet) Has(id ID) bool {
	return id.Valid() && s.present[id]
}

// Len 返回有分数的维度数。
func (s ScoreSet) Len() int {
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// Map 转换回以维度名为 key 的 map，只包含存在的维度。
func (s ScoreSet) Map() map[string]float64 {
	out := make(map[string]float64, s.Len())
	for i, ok := range s.present {
		if ok {
			out[registry[i].Name] = s.values[i]
		}
	}
	return out
}

// DecodeReport 记录解码时被丢弃的条目，便于日志与调试。
type DecodeReport struct {
	Unknown []string // 注册表中不存在的维度名
	Invalid []string // 非有限值或超出 [1,7] 的维度名
}

// Clean 表示没有丢弃任何条目。
func (r DecodeReport) Clean() bool {
	return len(r.Unknown) == 0 && len(r.Invalid) == 0
}

// Decode 是开放 map 进入计算前唯一的校验步骤：
// 未知维度名被丢弃并记录；非法分数视为缺失并记录。不会返回错误。
func Decode(raw map[string]float64) (ScoreSet, DecodeReport) {
	var (
		set    ScoreSet
		report DecodeReport
	)
	for name, v := range raw {
		id, ok := byName[name]
		if !ok {
			report.Unknown = append(report.Unknown, name)
			continue
		}
		if !ValidScore(v) {
			report.Invalid = append(report.Invalid, name)
			continue
		}
		set.values[id] = v
		set.present[id] = true
	}
	sort.Strings(report.Unknown)
	sort.Strings(report.Invalid)
	return set, report
}

// Vector 是归一化到 [0,1] 的 62 维口味向量，下标 i 对应 registry[i]。
type Vector [Count]float64

// Slice 返回向量的切片副本，用于写入向量库。
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// At 按维度读取。
func (v Vector) At(id ID) float64 {
	return v[id]
}

// VectorFromSlice 从向量库读回的切片构造 Vector；长度不等于 Count 属于前置条件违反。
func VectorFromSlice(s []float64) (Vector, error) {
	var v Vector
	if len(s) != Count {
		return v, core.WrapDomainError(core.ModuleDimension, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dimension: vector length %d, want %d", len(s), Count), core.ErrVectorDimension)
	}
	copy(v[:], s)
	return v, nil
}
