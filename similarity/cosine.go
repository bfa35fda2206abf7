// Package similarity 提供口味向量之间的余弦相似度与逐维对齐度。
package similarity

import (
	"math"

	"github.com/rushteam/filmtaste/dimension"
)

// Cosine 计算 dot(a,b)/(|a||b|)。任一向量范数为 0、长度不一致或为空时返回 0。
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineVector 是 Cosine 的定长版本，长度由类型保证。
func CosineVector(a, b dimension.Vector) float64 {
	return Cosine(a[:], b[:])
}

// Distance 返回余弦距离 1 - similarity，与向量库的距离空间一致。
func Distance(a, b []float64) float64 {
	return 1 - Cosine(a, b)
}

// FromDistance 把余弦距离换算回相似度。
func FromDistance(d float64) float64 {
	return 1 - d
}
