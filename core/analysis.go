package core

import "unicode/utf8"

// Analysis 是打分协作方对单部影片的分析结果。
// DimensionalScores 是原始的开放 map，进入计算前必须经过 dimension.Decode 校验。
type Analysis struct {
	DimensionalScores    map[string]float64 `json:"dimensional_scores"`
	CoreEssence          string             `json:"core_essence,omitempty"`
	ViewerResonance      string             `json:"viewer_resonance,omitempty"`
	AestheticSignature   string             `json:"aesthetic_signature,omitempty"`
	HumanConditionThemes []string           `json:"human_condition_themes,omitempty"`

	// Fallback 为 true 表示协作方失败，此记录为默认占位
	Fallback bool `json:"fallback,omitempty"`
}

// DefaultAnalysis 是协作方失败时使用的占位分析：没有任何维度分数。
func DefaultAnalysis() *Analysis {
	return &Analysis{
		DimensionalScores:    map[string]float64{},
		CoreEssence:          "Analysis unavailable",
		HumanConditionThemes: []string{"general"},
		Fallback:             true,
	}
}

const moodMaxRunes = 50

// Mood 由 CoreEssence 截断得到，用作类别画像中的 mood 标签。
func (a *Analysis) Mood() string {
	if a == nil || a.Fallback {
		return "neutral"
	}
	if a.CoreEssence == "" {
		return "contemplative"
	}
	if utf8.RuneCountInString(a.CoreEssence) <= moodMaxRunes {
		return a.CoreEssence
	}
	return string([]rune(a.CoreEssence)[:moodMaxRunes])
}

// Themes 返回人性主题，作为影片的 themes。
func (a *Analysis) Themes() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.HumanConditionThemes...)
}

// Enrich 把分析结果中的主题与 mood 回写到影片记录（仅在影片缺失时）。
func (a *Analysis) Enrich(f *Film) {
	if a == nil || f == nil {
		return
	}
	if len(f.Themes) == 0 {
		f.Themes = a.Themes()
	}
	if f.Mood == "" {
		f.Mood = a.Mood()
	}
}
