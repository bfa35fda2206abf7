package taste

import "github.com/rushteam/filmtaste/dimension"

// Fingerprint 是一组喜爱影片的完整口味指纹，创建后不再修改；需要更新时重新 Build。
type Fingerprint struct {
	DimensionalScores     map[string]float64 `json:"dimensional_scores"`
	StrongLowPreferences  []Preference       `json:"strong_low_preferences"`
	StrongHighPreferences []Preference       `json:"strong_high_preferences"`
	Narrative             string             `json:"narrative"`
	TasteVector           dimension.Vector   `json:"taste_vector"`
	VectorDimension       int                `json:"vector_dimension"`

	// Films 是参与聚合的影片数，Coverage 是至少有一个分数的维度数
	Films    int `json:"films"`
	Coverage int `json:"coverage"`
}

// Build 从喜爱影片的分数集合生成指纹。空输入得到全中性指纹。
func Build(sets []dimension.ScoreSet) Fingerprint {
	avg, covered := aggregate(sets)
	low, high := ExtractPreferences(avg)
	return Fingerprint{
		DimensionalScores:     avg.Map(),
		StrongLowPreferences:  low,
		StrongHighPreferences: high,
		Narrative:             RenderNarrative(avg),
		TasteVector:           avg.Vector(),
		VectorDimension:       dimension.Count,
		Films:                 len(sets),
		Coverage:              covered,
	}
}

// Insufficient 表示没有任何维度信号，调用方应在展示层提示"数据不足"。
func (f Fingerprint) Insufficient() bool {
	return f.Coverage == 0
}
