// Package dimension 定义 62 个固定顺序的电影口味维度（1-7 分制），以及经过校验的分数集合。
//
// 注册表是编译期常量表，进程内只读：对外只暴露值拷贝，不存在写入路径。
// 维度分为六组：剪辑节奏（editing_rhythm）与声音配乐（sound_score）各自独立成组。
package dimension

import "fmt"

// Count 是维度总数，也是所有口味向量的长度。
const Count = 62

// ID 是维度的编译期枚举，值即向量下标。
type ID int

const (
	// Visual Language
	ColorPalettePsychology ID = iota
	LightingPhilosophy
	CameraMovementPersonality
	ShotCompositionPhilosophy
	DepthOfFieldPsychology
	TextureAndGrain
	AspectRatioEmotionalFrame
	SpatialDensity
	CinematicRealismSpectrum
	BlockingAndPerformanceSpace
	ColorTemperature
	LensDistortionAndPerspective
	ShadowRatio
	FrameRateAndMotion
	VisualMotifRepetition

	// Editing & Rhythm
	EditingTempo
	NarrativeRhythm
	TemporalStructure
	MontagePhilosophy
	SceneLengthVariance
	EllipsisAndGaps
	TransitionStyle
	RhythmAcceleration

	// Sound & Score
	ScoreEmotionalTemperature
	ScoreDensity
	MusicFunction
	SoundscapeTexture
	DiegeticVsNondiegeticRatio
	SonicInteriority
	SilenceAsTool
	VocalTreatment
	RhythmicPercussion

	// Narrative Psychology
	PhilosophicalStance
	NarrativeTensionSource
	MoralComplexity
	EndingResolution
	PowerDynamics
	IntimacyScale
	DialoguePhilosophy
	RelationshipToClass
	BodyAndPhysicality
	TimeRelationship
	HopeQuotient
	PoliticalConsciousness

	// Quality Profile
	CraftPrecisionVsRawness
	ArtCinemaVsPopCinemaMode
	NarrativeAmbitionLevel
	IronySincerityRegister
	EmotionalWeightTolerance
	PerformanceStylePreference
	ScriptConstructionVisibility
	AuteurIntentionalityDesire

	// Emotional Resonance
	EmotionalTemperature
	CatharsisAvailability
	TonalConsistency
	EmpathyRequirement
	BeautyPriority
	SensoryImmersion
	VulnerabilityExposure
	MysteryComfort
	ArtificeAwareness
	SufferingTolerance

	numIDs
)

// 编译期保证枚举与 Count 一致。
var _ [Count]struct{} = [numIDs]struct{}{}

// Category 是维度分组。
type Category string

const (
	CategoryVisual    Category = "visual_language"
	CategoryRhythm    Category = "editing_rhythm"
	CategorySound     Category = "sound_score"
	CategoryNarrative Category = "narrative_psychology"
	CategoryQuality   Category = "quality_profile"
	CategoryEmotional Category = "emotional_resonance"
)

// Categories 按注册顺序返回全部分组。
func Categories() []Category {
	return []Category{
		CategoryVisual,
		CategoryRhythm,
		CategorySound,
		CategoryNarrative,
		CategoryQuality,
		CategoryEmotional,
	}
}

// Dimension 是单个维度的静态描述。Low / High 是两极的说明文字，仅用于展示。
type Dimension struct {
	ID       ID       `json:"index"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Low      string   `json:"low"`
	High     string   `json:"high"`
}

var registry = [Count]Dimension{
	{ColorPalettePsychology, "color_palette_psychology", CategoryVisual, "muted earth tones, desaturated", "saturated neon intensity"},
	{LightingPhilosophy, "lighting_philosophy", CategoryVisual, "naturalistic available light", "expressionistic chiaroscuro"},
	{CameraMovementPersonality, "camera_movement_personality", CategoryVisual, "locked down static observation", "kinetic handheld chaos"},
	{ShotCompositionPhilosophy, "shot_composition_philosophy", CategoryVisual, "symmetrical centered balanced", "off-balance diagonal tension"},
	{DepthOfFieldPsychology, "depth_of_field_psychology", CategoryVisual, "deep focus everything visible", "shallow isolated subject"},
	{TextureAndGrain, "texture_and_grain", CategoryVisual, "digital pristine", "heavy grain analog texture"},
	{AspectRatioEmotionalFrame, "aspect_ratio_emotional_frame", CategoryVisual, "widescreen epic space", "boxy intimate 4:3 portrait"},
	{SpatialDensity, "spatial_density", CategoryVisual, "minimalist empty space", "maximal visual density"},
	{CinematicRealismSpectrum, "cinematic_realism_spectrum", CategoryVisual, "documentary vérité", "surreal dreamspace"},
	{BlockingAndPerformanceSpace, "blocking_and_performance_space", CategoryVisual, "naturalistic actor movement", "choreographed theatrical"},
	{ColorTemperature, "color_temperature", CategoryVisual, "cold blue clinical", "warm amber intimate"},
	{LensDistortionAndPerspective, "lens_distortion_and_perspective", CategoryVisual, "natural human eye", "extreme wide angle distortion"},
	{ShadowRatio, "shadow_ratio", CategoryVisual, "low contrast even lighting", "high contrast deep shadows"},
	{FrameRateAndMotion, "frame_rate_and_motion", CategoryVisual, "24fps cinematic dreamstate", "high frame rate hyper-real"},
	{VisualMotifRepetition, "visual_motif_repetition", CategoryVisual, "varied no recurring imagery", "obsessive visual themes"},

	{EditingTempo, "editing_tempo", CategoryRhythm, "meditative long takes", "jagged hyper-montage"},
	{NarrativeRhythm, "narrative_rhythm", CategoryRhythm, "even flowing linear", "staccato episodic chaos"},
	{TemporalStructure, "temporal_structure", CategoryRhythm, "chronological linear time", "nonlinear dream logic"},
	{MontagePhilosophy, "montage_philosophy", CategoryRhythm, "invisible continuity editing", "Eisensteinian collision"},
	{SceneLengthVariance, "scene_length_variance", CategoryRhythm, "uniform scene length", "radical length variation"},
	{EllipsisAndGaps, "ellipsis_and_gaps", CategoryRhythm, "everything shown", "radical ellipsis huge gaps"},
	{TransitionStyle, "transition_style", CategoryRhythm, "hard cuts", "slow dissolves fades"},
	{RhythmAcceleration, "rhythm_acceleration", CategoryRhythm, "steady pace throughout", "builds to frenetic climax"},

	{ScoreEmotionalTemperature, "score_emotional_temperature", CategorySound, "melancholic strings minor key", "triumphant brass major"},
	{ScoreDensity, "score_density", CategorySound, "minimalist sparse", "maximalist orchestral saturation"},
	{MusicFunction, "music_function", CategorySound, "emotional amplification", "ironic counterpoint"},
	{SoundscapeTexture, "soundscape_texture", CategorySound, "quiet intimate ambience", "overwhelming sensory saturation"},
	{DiegeticVsNondiegeticRatio, "diegetic_vs_nondiegetic_ratio", CategorySound, "all diegetic source music", "pure score orchestral omniscience"},
	{SonicInteriority, "sonic_interiority", CategorySound, "external world sounds", "subjective inner soundscape"},
	{SilenceAsTool, "silence_as_tool", CategorySound, "constant sound/score", "radical use of silence"},
	{VocalTreatment, "vocal_treatment", CategorySound, "crisp clear dialogue", "obscured murmured layered"},
	{RhythmicPercussion, "rhythmic_percussion", CategorySound, "no percussion strings/piano", "driving drums anxiety pulse"},

	{PhilosophicalStance, "philosophical_stance", CategoryNarrative, "humanist hope", "nihilist void"},
	{NarrativeTensionSource, "narrative_tension_source", CategoryNarrative, "internal psychological", "external systemic"},
	{MoralComplexity, "moral_complexity", CategoryNarrative, "clear good vs evil", "everyone compromised"},
	{EndingResolution, "ending_resolution", CategoryNarrative, "complete closure", "radical ambiguity"},
	{PowerDynamics, "power_dynamics", CategoryNarrative, "individual agency", "structural determinism"},
	{IntimacyScale, "intimacy_scale", CategoryNarrative, "epic historical scope", "domestic intimate portrait"},
	{DialoguePhilosophy, "dialogue_philosophy", CategoryNarrative, "naturalistic conversation", "heightened poetic language"},
	{RelationshipToClass, "relationship_to_class", CategoryNarrative, "class invisible", "class as central"},
	{BodyAndPhysicality, "body_and_physicality", CategoryNarrative, "disembodied cerebral", "visceral bodily experience"},
	{TimeRelationship, "time_relationship", CategoryNarrative, "present moment urgency", "historical memory weight"},
	{HopeQuotient, "hope_quotient", CategoryNarrative, "optimistic change possible", "despair stasis entropy"},
	{PoliticalConsciousness, "political_consciousness", CategoryNarrative, "apolitical individual", "overtly political systemic"},

	{CraftPrecisionVsRawness, "craft_precision_vs_rawness", CategoryQuality, "raw expressiveness", "craft precision"},
	{ArtCinemaVsPopCinemaMode, "art_cinema_vs_pop_cinema_mode", CategoryQuality, "art-cinema: ambiguity/slowness", "pop-cinema: clarity/pace"},
	{NarrativeAmbitionLevel, "narrative_ambition_level", CategoryQuality, "purely sensory thrill", "mythic statement"},
	{IronySincerityRegister, "irony_sincerity_register", CategoryQuality, "sincere earnest", "ironic self-aware"},
	{EmotionalWeightTolerance, "emotional_weight_tolerance", CategoryQuality, "light comfort", "devastating weight"},
	{PerformanceStylePreference, "performance_style_preference", CategoryQuality, "naturalistic behavioral", "heightened theatrical"},
	{ScriptConstructionVisibility, "script_construction_visibility", CategoryQuality, "invisible organic", "visible architecture"},
	{AuteurIntentionalityDesire, "auteur_intentionality_desire", CategoryQuality, "collaborative process", "singular vision"},

	{EmotionalTemperature, "emotional_temperature", CategoryEmotional, "cold distant clinical", "hot raw overwhelming"},
	{CatharsisAvailability, "catharsis_availability", CategoryEmotional, "no release sustained tension", "explosive emotional climax"},
	{TonalConsistency, "tonal_consistency", CategoryEmotional, "genre pure consistent", "radical genre collision"},
	{EmpathyRequirement, "empathy_requirement", CategoryEmotional, "likable protagonists", "repellent difficult characters"},
	{BeautyPriority, "beauty_priority", CategoryEmotional, "beauty essential", "ugliness as honesty"},
	{SensoryImmersion, "sensory_immersion", CategoryEmotional, "cerebral distant", "fully immersive sensory"},
	{VulnerabilityExposure, "vulnerability_exposure", CategoryEmotional, "protected defended", "raw exposed interiority"},
	{MysteryComfort, "mystery_comfort", CategoryEmotional, "all explained", "radical inexplicability"},
	{ArtificeAwareness, "artifice_awareness", CategoryEmotional, "invisible craft immersion", "self-conscious meta-cinema"},
	{SufferingTolerance, "suffering_tolerance", CategoryEmotional, "suffering avoided", "suffering unrelenting"},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, Count)
	for i, d := range registry {
		if d.ID != ID(i) {
			panic(fmt.Sprintf("dimension: registry entry %q out of order", d.Name))
		}
		if _, dup := m[d.Name]; dup {
			panic(fmt.Sprintf("dimension: duplicate name %q", d.Name))
		}
		m[d.Name] = d.ID
	}
	return m
}()

// Valid 判断 ID 是否在注册表范围内。
func (id ID) Valid() bool {
	return id >= 0 && id < numIDs
}

// Name 返回维度名；越界时返回空字符串。
func (id ID) Name() string {
	if !id.Valid() {
		return ""
	}
	return registry[id].Name
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("dimension(%d)", int(id))
	}
	return registry[id].Name
}

// Get 返回维度描述的值拷贝。
func Get(id ID) (Dimension, bool) {
	if !id.Valid() {
		return Dimension{}, false
	}
	return registry[id], true
}

// Lookup 按名字查找维度。
func Lookup(name string) (Dimension, bool) {
	id, ok := byName[name]
	if !ok {
		return Dimension{}, false
	}
	return registry[id], true
}

// IndexOf 返回维度名对应的向量下标。
func IndexOf(name string) (int, bool) {
	id, ok := byName[name]
	return int(id), ok
}

// All 按注册顺序返回全部维度（副本）。
func All() []Dimension {
	out := make([]Dimension, Count)
	copy(out, registry[:])
	return out
}

// Names 按注册顺序返回全部维度名。
func Names() []string {
	out := make([]string, Count)
	for i, d := range registry {
		out[i] = d.Name
	}
	return out
}

// InCategory 按注册顺序返回某分组下的维度。
func InCategory(cat Category) []Dimension {
	var out []Dimension
	for _, d := range registry {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}
