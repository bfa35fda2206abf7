package taste

import (
	"sort"

	"github.com/rushteam/filmtaste/dimension"
)

// 强偏好阈值。与叙述渲染使用的 3/5 阈值相互独立。
const (
	StrongLowThreshold   = 2.5
	StrongHighThreshold  = 5.5
	MaxStrongPreferences = 10
)

// Preference 是一个显著的极端偏好。
type Preference struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
}

// ExtractPreferences 找出 <=2.5 的低端偏好与 >=5.5 的高端偏好，
// 各自按极端程度排序（低端升序，高端降序），同分保持注册顺序，最多 10 条。
func ExtractPreferences(avg Averages) (low, high []Preference) {
	low = make([]Preference, 0, MaxStrongPreferences)
	high = make([]Preference, 0, MaxStrongPreferences)
	for i, score := range avg {
		p := Preference{Dimension: dimension.ID(i).Name(), Score: score}
		switch {
		case score <= StrongLowThreshold:
			low = append(low, p)
		case score >= StrongHighThreshold:
			high = append(high, p)
		}
	}

	sort.SliceStable(low, func(i, j int) bool { return low[i].Score < low[j].Score })
	sort.SliceStable(high, func(i, j int) bool { return high[i].Score > high[j].Score })

	if len(low) > MaxStrongPreferences {
		low = low[:MaxStrongPreferences]
	}
	if len(high) > MaxStrongPreferences {
		high = high[:MaxStrongPreferences]
	}
	return low, high
}
