// Package taste 把多部喜爱影片的维度分数聚合成口味指纹：
// 平均分、强偏好、文字叙述与归一化向量。
//
// 所有函数都是纯函数，输入不被修改，结果与输入顺序无关。
package taste

import "github.com/rushteam/filmtaste/dimension"

// Averages 是按维度聚合后的 1-7 分平均值，下标对应注册表。
type Averages [dimension.Count]float64

// Neutral 返回全部为中性值 4.0 的平均值（无信号）。
func Neutral() Averages {
	var avg Averages
	for i := range avg {
		avg[i] = dimension.NeutralScore
	}
	return avg
}

// Aggregate 对每个维度，只对提供了该维度的影片求均值；无人提供时取 4.0。
// 空输入返回全中性结果，不视为错误。
func Aggregate(sets []dimension.ScoreSet) Averages {
	avg, _ := aggregate(sets)
	return avg
}

// aggregate 额外返回有分数覆盖的维度数。
func aggregate(sets []dimension.ScoreSet) (Averages, int) {
	var (
		sums   [dimension.Count]float64
		counts [dimension.Count]int
	)
	for _, set := range sets {
		for i := 0; i < dimension.Count; i++ {
			if v, ok := set.Get(dimension.ID(i)); ok {
				sums[i] += v
				counts[i]++
			}
		}
	}

	avg := Neutral()
	covered := 0
	for i := range avg {
		if counts[i] > 0 {
			avg[i] = sums[i] / float64(counts[i])
			covered++
		}
	}
	return avg, covered
}

// Get 按维度读取平均分。
func (a Averages) Get(id dimension.ID) float64 {
	if !id.Valid() {
		return dimension.NeutralScore
	}
	return a[id]
}

// Map 转换为以维度名为 key 的 map（全部 62 个维度）。
func (a Averages) Map() map[string]float64 {
	out := make(map[string]float64, dimension.Count)
	for i, v := range a {
		out[dimension.ID(i).Name()] = v
	}
	return out
}

// Normalize 把 1-7 分映射到 [0,1]：(score-1)/6。
func Normalize(score float64) float64 {
	return (score - dimension.MinScore) / (dimension.MaxScore - dimension.MinScore)
}

// Vector 对每个维度统一做 Normalize。
func (a Averages) Vector() dimension.Vector {
	var v dimension.Vector
	for i, s := range a {
		v[i] = Normalize(s)
	}
	return v
}

// FilmVector 把单部影片的分数集合转成影片向量：缺失维度取中性值。
func FilmVector(set dimension.ScoreSet) dimension.Vector {
	return Aggregate([]dimension.ScoreSet{set}).Vector()
}
