package similarity

import (
	"sort"
	"strings"

	"github.com/rushteam/filmtaste/dimension"
)

const (
	TopAligned       = 10
	BottomAligned    = 5
	ExplainAligned   = 3
	explanationStart = "This film matches your taste because it"
)

// explanationPhrases 仅覆盖部分维度，未覆盖的维度在解释中直接跳过。
var explanationPhrases = map[dimension.ID]string{
	dimension.ColorPalettePsychology:    "shares your color palette sensibility",
	dimension.LightingPhilosophy:        "uses light the way you respond to",
	dimension.CameraMovementPersonality: "moves the camera in ways you find natural",
	dimension.EditingTempo:              "breathes at your preferred rhythm",
	dimension.ScoreEmotionalTemperature: "uses music to evoke emotion the way you like",
	dimension.PhilosophicalStance:       "shares your worldview about human nature",
	dimension.EmotionalTemperature:      "matches your emotional processing style",
	dimension.MysteryComfort:            "handles ambiguity the way you prefer",
	dimension.CinematicRealismSpectrum:  "balances realism and stylization as you like",
	dimension.VulnerabilityExposure:     "reveals interiority at your comfort level",
}

// Aligned 是单个维度的对齐度。
type Aligned struct {
	Dimension string  `json:"dimension"`
	Alignment float64 `json:"alignment"`
}

// MatchResult 是影片与用户口味的匹配结果。
type MatchResult struct {
	OverallSimilarity float64   `json:"overall_similarity"`
	TopMatching       []Aligned `json:"top_matching_dimensions"`
	BottomMatching    []Aligned `json:"bottom_matching_dimensions"`
	Explanation       string    `json:"match_explanation"`
}

// Alignment 逐维计算 1 - |film[i] - user[i]|。
func Alignment(film, user dimension.Vector) [dimension.Count]float64 {
	var out [dimension.Count]float64
	for i := range out {
		d := film[i] - user[i]
		if d < 0 {
			d = -d
		}
		out[i] = 1 - d
	}
	return out
}

// Ranked 按对齐度降序返回全部维度，同分保持注册顺序。
func Ranked(film, user dimension.Vector) []Aligned {
	alignment := Alignment(film, user)
	ranked := make([]Aligned, dimension.Count)
	for i, a := range alignment {
		ranked[i] = Aligned{Dimension: dimension.ID(i).Name(), Alignment: a}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Alignment > ranked[j].Alignment
	})
	return ranked
}

// Match 计算整体相似度，并给出最一致的 10 个维度、最不一致的 5 个维度和一句解释。
func Match(film, user dimension.Vector) MatchResult {
	ranked := Ranked(film, user)

	top := make([]Aligned, TopAligned)
	copy(top, ranked[:TopAligned])
	bottom := make([]Aligned, BottomAligned)
	copy(bottom, ranked[len(ranked)-BottomAligned:])

	return MatchResult{
		OverallSimilarity: CosineVector(film, user),
		TopMatching:       top,
		BottomMatching:    bottom,
		Explanation:       Explain(ranked),
	}
}

// Explain 只看前 3 个维度，把有短语的维度拼成解释句。
func Explain(ranked []Aligned) string {
	parts := []string{explanationStart}
	for i, a := range ranked {
		if i >= ExplainAligned {
			break
		}
		id, ok := dimension.IndexOf(a.Dimension)
		if !ok {
			continue
		}
		if phrase, ok := explanationPhrases[dimension.ID(id)]; ok {
			parts = append(parts, phrase)
		}
	}
	return " " + strings.Join(parts, ", ") + "."
}
