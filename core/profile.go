package core

// TasteProfile 是类别维度的口味画像，由喜爱影片的原始元数据聚合得到。
// 每次请求重新计算，不持久化。
type TasteProfile struct {
	TopGenres    []string `json:"top_genres"`
	TopThemes    []string `json:"top_themes"`
	TopDirectors []string `json:"top_directors"`
	TopActors    []string `json:"top_actors"`
	TopDecades   []string `json:"top_decades"`
	TopMoods     []string `json:"top_moods"`

	GenreDistribution map[string]int `json:"genre_distribution"`
	TotalMovies       int            `json:"total_movies"`
	AverageYear       float64        `json:"average_year"`
}

// EmptyTasteProfile 返回无信号时的画像：所有列表为空而非 nil，便于序列化。
func EmptyTasteProfile() *TasteProfile {
	return &TasteProfile{
		TopGenres:         []string{},
		TopThemes:         []string{},
		TopDirectors:      []string{},
		TopActors:         []string{},
		TopDecades:        []string{},
		TopMoods:          []string{},
		GenreDistribution: map[string]int{},
	}
}
