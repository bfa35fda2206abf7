package taste

import (
	"strings"

	"github.com/rushteam/filmtaste/dimension"
)

// 叙述渲染阈值：低于 NarrativeLow 或高于 NarrativeHigh 才产生描述。
// 少数维度使用更严格的 NarrativeStrictLow / NarrativeStrictHigh。
const (
	NarrativeLow        = 3.0
	NarrativeHigh       = 5.0
	NarrativeStrictLow  = 2.5
	NarrativeStrictHigh = 5.5
)

// sentence 是一条按阈值触发的模板句。low/high 为空表示该极不产生句子。
type sentence struct {
	id        dimension.ID
	lowBelow  float64
	highAbove float64
	low       string
	high      string
}

func loose(id dimension.ID, low, high string) sentence {
	return sentence{id: id, lowBelow: NarrativeLow, highAbove: NarrativeHigh, low: low, high: high}
}

func strict(id dimension.ID, low, high string) sentence {
	return sentence{id: id, lowBelow: NarrativeStrictLow, highAbove: NarrativeStrictHigh, low: low, high: high}
}

// section 是一个分组的子叙述，句子按固定优先级排列。
type section struct {
	name      string
	sentences []sentence
}

// narrativeSections 的顺序即输出顺序：visual, rhythm, sound, quality, story, emotional。
var narrativeSections = []section{
	{
		name: "visual",
		sentences: []sentence{
			loose(dimension.ColorPalettePsychology,
				"You gravitate toward muted, desaturated color palettes that evoke melancholy and earthbound realism.",
				"You respond to saturated, neon-drenched visuals that create heightened, dreamlike intensity."),
			loose(dimension.LightingPhilosophy,
				"You prefer naturalistic lighting that captures the world as it is, unmanipulated.",
				"You're drawn to expressionistic chiaroscuro lighting that sculpts psychological landscapes."),
			loose(dimension.CameraMovementPersonality,
				"You value static, contemplative camera work that observes from respectful distance.",
				"You connect with kinetic, handheld cinematography that puts you inside the nervous system of the story."),
			loose(dimension.CinematicRealismSpectrum,
				"You trust observational realism over stylization.",
				"You embrace surreal dreamscapes where subconscious truth supersedes literal reality."),
		},
	},
	{
		name: "rhythm",
		sentences: []sentence{
			loose(dimension.EditingTempo,
				"You have patience for long takes and meditative pacing that allows you to sit with images.",
				"You respond to rapid montage and kinetic editing that creates visceral momentum."),
			loose(dimension.TemporalStructure,
				"",
				"You embrace nonlinear narrative structures that mirror how memory actually works."),
		},
	},
	{
		name: "sound",
		sentences: []sentence{
			loose(dimension.ScoreEmotionalTemperature,
				"You're drawn to melancholic, minor-key scores that amplify sorrow and loss.",
				"You connect with triumphant, soaring music that offers emotional uplift."),
			loose(dimension.SilenceAsTool,
				"",
				"You value radical use of silence as space for contemplation and discomfort."),
			loose(dimension.SoundscapeTexture,
				"You prefer quiet, intimate soundscapes that capture interior emotional space.",
				"You respond to overwhelming sensory saturation in sound design."),
		},
	},
	{
		name: "quality",
		sentences: []sentence{
			loose(dimension.CraftPrecisionVsRawness,
				"You value raw expressiveness and emotional immediacy over polished perfection—craft can get in the way of truth.",
				"You find deep satisfaction in meticulous formal mastery where every frame is composed with visual intelligence."),
			loose(dimension.ArtCinemaVsPopCinemaMode,
				"You prefer art-cinema mode: ambiguity, slowness, existential inquiry that rewards patience.",
				"You prefer pop-cinema mode: clarity, momentum, satisfying plot escalation and kinetic pleasure."),
			strict(dimension.NarrativeAmbitionLevel,
				"You seek pure sensory thrill and spectacle over thematic density.",
				"You want cinema to wrestle with mythic themes—existence, mortality, the human condition writ large."),
			loose(dimension.IronySincerityRegister,
				"You need films to take emotion seriously without ironic distance—full sincerity is essential.",
				"You prefer self-aware, meta-textual cinema that maintains ironic distance from pure emotion."),
			strict(dimension.EmotionalWeightTolerance,
				"You use cinema for restoration and comfort—emotional heaviness feels overwhelming.",
				"You seek devastating emotional weight and unrelenting intensity—light films feel trivial."),
			loose(dimension.PerformanceStylePreference,
				"You want acting to disappear into naturalistic behavioral truth.",
				"You love watching visible craft in heightened theatrical performances."),
			loose(dimension.ScriptConstructionVisibility,
				"",
				"You find pleasure in intricate narrative architecture and visible structural intelligence."),
			loose(dimension.AuteurIntentionalityDesire,
				"",
				"You respond to singular directorial vision and total artistic control."),
		},
	},
	{
		name: "story",
		sentences: []sentence{
			loose(dimension.PhilosophicalStance,
				"You connect with humanist narratives that maintain hope in human goodness and meaningful connection.",
				"You're drawn to cynical or nihilistic worldviews that refuse easy comfort."),
			loose(dimension.EndingResolution,
				"",
				"You prefer films that end in radical ambiguity, trusting you to live with unanswered questions."),
			loose(dimension.MoralComplexity,
				"",
				"You value moral ambiguity where every character is compromised and human."),
			loose(dimension.RelationshipToClass,
				"",
				"You notice when economic reality shapes everything, seeing class as central to human experience."),
		},
	},
	{
		name: "emotional",
		sentences: []sentence{
			loose(dimension.EmotionalTemperature,
				"You process emotion through distance and observation, intellectualizing feeling.",
				"You need raw, unfiltered emotional intensity and aren't afraid of messiness."),
			loose(dimension.VulnerabilityExposure,
				"",
				"You crave total emotional exposure, needing to see people break completely."),
			loose(dimension.MysteryComfort,
				"",
				"You're comfortable with radical inexplicability, embracing films that never explain themselves."),
			loose(dimension.BeautyPriority,
				"Every frame must be aesthetically composed—you need beauty as refuge.",
				"You distrust beauty as lie, preferring deliberate ugliness as honesty."),
		},
	},
}

func (s sentence) render(avg Averages) string {
	score := avg.Get(s.id)
	switch {
	case score < s.lowBelow:
		return s.low
	case score > s.highAbove:
		return s.high
	}
	return ""
}

func (sec section) render(avg Averages) string {
	parts := make([]string, 0, len(sec.sentences))
	for _, s := range sec.sentences {
		if text := s.render(avg); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// RenderSection 渲染单个分组的子叙述，name 取 visual/rhythm/sound/quality/story/emotional。
func RenderSection(name string, avg Averages) string {
	for _, sec := range narrativeSections {
		if sec.name == name {
			return sec.render(avg)
		}
	}
	return ""
}

// RenderNarrative 按固定顺序拼接六个分组的非空子叙述。
func RenderNarrative(avg Averages) string {
	parts := make([]string, 0, len(narrativeSections))
	for _, sec := range narrativeSections {
		if text := sec.render(avg); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
