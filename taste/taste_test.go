package taste

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/dimension"
)

func fullSet(t *testing.T, base float64, overrides map[dimension.ID]float64) dimension.ScoreSet {
	t.Helper()
	var set dimension.ScoreSet
	for i := 0; i < dimension.Count; i++ {
		require.NoError(t, set.Set(dimension.ID(i), base))
	}
	for id, v := range overrides {
		require.NoError(t, set.Set(id, v))
	}
	return set
}

func TestAggregate_Empty(t *testing.T) {
	avg := Aggregate(nil)
	for i, v := range avg {
		assert.Equal(t, 4.0, v, "dimension %d", i)
	}

	fp := Build(nil)
	assert.True(t, fp.Insufficient())
	assert.Empty(t, fp.StrongLowPreferences)
	assert.Empty(t, fp.StrongHighPreferences)
	assert.Empty(t, fp.Narrative)
	assert.Equal(t, 0.5, fp.TasteVector[0])
}

func TestAggregate_MeanOfPresentOnly(t *testing.T) {
	var a, b, c dimension.ScoreSet
	require.NoError(t, a.Set(dimension.EditingTempo, 2))
	require.NoError(t, b.Set(dimension.EditingTempo, 5))
	require.NoError(t, b.Set(dimension.HopeQuotient, 7))
	// c 没有任何分数，不应稀释均值

	avg := Aggregate([]dimension.ScoreSet{a, b, c})
	assert.Equal(t, 3.5, avg.Get(dimension.EditingTempo))
	assert.Equal(t, 7.0, avg.Get(dimension.HopeQuotient))
	assert.Equal(t, 4.0, avg.Get(dimension.MysteryComfort))

	reversed := Aggregate([]dimension.ScoreSet{c, b, a})
	assert.Equal(t, avg, reversed)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{score: 1, want: 0},
		{score: 4, want: 0.5},
		{score: 7, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.score))
	}
	prev := Normalize(1)
	for s := 1.25; s <= 7; s += 0.25 {
		cur := Normalize(s)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestBuild_Moonlight(t *testing.T) {
	set := fullSet(t, 2.0, map[dimension.ID]float64{dimension.TemporalStructure: 6.0})
	fp := Build([]dimension.ScoreSet{set})

	assert.Equal(t, 6.0, fp.DimensionalScores["temporal_structure"])
	for name, v := range fp.DimensionalScores {
		if name != "temporal_structure" {
			assert.Equal(t, 2.0, v, name)
		}
	}
	idx, ok := dimension.IndexOf("temporal_structure")
	require.True(t, ok)
	assert.InDelta(t, 0.833, fp.TasteVector[idx], 1e-3)
	assert.Equal(t, dimension.Count, fp.VectorDimension)
	assert.Equal(t, dimension.Count, fp.Coverage)
	assert.False(t, fp.Insufficient())

	require.Len(t, fp.StrongHighPreferences, 1)
	assert.Equal(t, Preference{Dimension: "temporal_structure", Score: 6.0}, fp.StrongHighPreferences[0])
	require.Len(t, fp.StrongLowPreferences, MaxStrongPreferences)
	// 同分按注册顺序
	assert.Equal(t, "color_palette_psychology", fp.StrongLowPreferences[0].Dimension)
	assert.Equal(t, "lighting_philosophy", fp.StrongLowPreferences[1].Dimension)

	assert.Contains(t, fp.Narrative, "nonlinear narrative structures")
	assert.Contains(t, fp.Narrative, "muted, desaturated color palettes")
}

func TestExtractPreferences(t *testing.T) {
	avg := Neutral()
	avg[dimension.EditingTempo] = 2.5
	avg[dimension.SilenceAsTool] = 1.0
	avg[dimension.MysteryComfort] = 5.5
	avg[dimension.BeautyPriority] = 6.8
	avg[dimension.HopeQuotient] = 2.51
	avg[dimension.MoralComplexity] = 5.49

	low, high := ExtractPreferences(avg)
	assert.Equal(t, []Preference{
		{Dimension: "silence_as_tool", Score: 1.0},
		{Dimension: "editing_tempo", Score: 2.5},
	}, low)
	assert.Equal(t, []Preference{
		{Dimension: "beauty_priority", Score: 6.8},
		{Dimension: "mystery_comfort", Score: 5.5},
	}, high)
}

func TestExtractPreferences_DisjointAndCapped(t *testing.T) {
	var avg Averages
	for i := range avg {
		if i%2 == 0 {
			avg[i] = 1.5
		} else {
			avg[i] = 6.5
		}
	}
	low, high := ExtractPreferences(avg)
	assert.Len(t, low, MaxStrongPreferences)
	assert.Len(t, high, MaxStrongPreferences)

	names := make(map[string]bool)
	for _, p := range low {
		names[p.Dimension] = true
	}
	for _, p := range high {
		assert.False(t, names[p.Dimension], "%s in both lists", p.Dimension)
	}
}

func TestRenderNarrative(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(a *Averages)
		contains []string
		absent   []string
	}{
		{
			name:   "neutral renders nothing",
			mutate: func(a *Averages) {},
		},
		{
			name: "loose threshold is exclusive",
			mutate: func(a *Averages) {
				a[dimension.EditingTempo] = 3.0
				a[dimension.LightingPhilosophy] = 5.0
			},
			absent: []string{"long takes", "chiaroscuro"},
		},
		{
			name: "loose poles",
			mutate: func(a *Averages) {
				a[dimension.EditingTempo] = 2.9
				a[dimension.LightingPhilosophy] = 5.1
			},
			contains: []string{"long takes", "chiaroscuro"},
		},
		{
			name: "strict dimensions ignore loose thresholds",
			mutate: func(a *Averages) {
				a[dimension.NarrativeAmbitionLevel] = 5.3
				a[dimension.EmotionalWeightTolerance] = 2.7
			},
			absent: []string{"mythic themes", "restoration and comfort"},
		},
		{
			name: "strict poles",
			mutate: func(a *Averages) {
				a[dimension.NarrativeAmbitionLevel] = 5.6
				a[dimension.EmotionalWeightTolerance] = 2.4
			},
			contains: []string{"mythic themes", "restoration and comfort"},
		},
		{
			name: "high only dimensions stay silent when low",
			mutate: func(a *Averages) {
				a[dimension.SilenceAsTool] = 1.0
				a[dimension.EndingResolution] = 1.0
			},
			absent: []string{"silence", "ambiguity"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := Neutral()
			tt.mutate(&avg)
			got := RenderNarrative(avg)
			if len(tt.contains) == 0 {
				assert.Empty(t, got)
			}
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestRenderNarrative_SectionOrder(t *testing.T) {
	avg := Neutral()
	avg[dimension.BeautyPriority] = 1.0         // emotional
	avg[dimension.ColorPalettePsychology] = 7.0 // visual
	avg[dimension.PhilosophicalStance] = 1.0    // story

	got := RenderNarrative(avg)
	visual := RenderSection("visual", avg)
	story := RenderSection("story", avg)
	emotional := RenderSection("emotional", avg)
	assert.Equal(t, strings.Join([]string{visual, story, emotional}, " "), got)
	assert.Empty(t, RenderSection("rhythm", avg))
	assert.Empty(t, RenderSection("unknown", avg))
}
