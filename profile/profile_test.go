package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
)

func TestAggregate_Empty(t *testing.T) {
	p := Aggregate(nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{}, p.TopGenres)
	assert.Equal(t, 0.0, p.AverageYear)
	assert.Equal(t, 0, p.TotalMovies)
	assert.Empty(t, p.GenreDistribution)
}

func TestAggregate(t *testing.T) {
	films := []*core.Film{
		{
			Title: "Moonlight", Year: 2016, Director: "Barry Jenkins",
			Cast:   []string{"Trevante Rhodes", "Mahershala Ali", "Naomie Harris", "Janelle Monáe"},
			Genres: []string{"Drama"}, Themes: []string{"identity", "masculinity"}, Mood: "tender",
		},
		{
			Title: "In the Mood for Love", Year: 2000, Director: "Wong Kar-wai",
			Cast:   []string{"Tony Leung", "Maggie Cheung"},
			Genres: []string{"Romance", "Drama"}, Themes: []string{"longing"}, Mood: "melancholic",
		},
		{
			Title: "If Beale Street Could Talk", Year: 2018, Director: "Barry Jenkins",
			Genres: []string{"Romance", "Drama", "Crime"}, Themes: []string{"identity"}, Mood: "tender",
		},
		{
			Title: "Unknown Tape", Director: "N/A",
			Genres: []string{"Documentary"},
		},
	}

	p := Aggregate(films)
	assert.Equal(t, 4, p.TotalMovies)
	assert.Equal(t, []string{"Drama", "Romance", "Crime", "Documentary"}, p.TopGenres)
	assert.Equal(t, map[string]int{"Drama": 3, "Romance": 2, "Crime": 1, "Documentary": 1}, p.GenreDistribution)
	assert.Equal(t, []string{"identity", "masculinity", "longing"}, p.TopThemes)
	assert.Equal(t, []string{"Barry Jenkins", "Wong Kar-wai"}, p.TopDirectors)
	assert.Equal(t, []string{"Trevante Rhodes", "Mahershala Ali", "Naomie Harris", "Tony Leung", "Maggie Cheung"}, p.TopActors)
	assert.Equal(t, []string{"2010s", "2000s"}, p.TopDecades)
	assert.Equal(t, []string{"tender", "melancholic"}, p.TopMoods)
	// 缺失年份不计入均值
	assert.InDelta(t, (2016.0+2000+2018)/3, p.AverageYear, 1e-9)
}

func TestAggregate_Caps(t *testing.T) {
	var films []*core.Film
	for _, g := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		films = append(films, &core.Film{Title: g, Genres: []string{g}, Year: 1950 + len(films)*10, Mood: g})
	}
	p := Aggregate(films)
	assert.Len(t, p.TopGenres, MaxGenres)
	assert.Len(t, p.TopDecades, MaxDecades)
	assert.Len(t, p.TopMoods, MaxMoods)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, p.TopGenres)
	assert.Len(t, p.GenreDistribution, 7)
}

func TestDecade(t *testing.T) {
	assert.Equal(t, "1990s", Decade(1994))
	assert.Equal(t, "2000s", Decade(2000))
	assert.Equal(t, "1920s", Decade(1929))
}

func TestInsights(t *testing.T) {
	highs := make([]*core.Candidate, 0, 6)
	for i := 0; i < 6; i++ {
		highs = append(highs, &core.Candidate{Score: 0.75})
	}

	tests := []struct {
		name    string
		profile *core.TasteProfile
		recs    []*core.Candidate
		want    []string
	}{
		{
			name:    "empty profile",
			profile: core.EmptyTasteProfile(),
			want:    []string{},
		},
		{
			name:    "classic",
			profile: &core.TasteProfile{TopGenres: []string{"Noir"}, TopDirectors: []string{"Billy Wilder"}, AverageYear: 1950},
			want: []string{
				"Your taste strongly favors Noir films",
				"You're a fan of Billy Wilder's work",
				"You appreciate classic cinema",
			},
		},
		{
			name:    "contemporary with many strong matches",
			profile: &core.TasteProfile{AverageYear: 2015},
			recs:    highs,
			want: []string{
				"You enjoy contemporary films",
				"Found 6 highly matched recommendations for you",
			},
		},
		{
			name:    "eclectic with too few strong matches",
			profile: &core.TasteProfile{AverageYear: 2000},
			recs:    highs[:5],
			want:    []string{"You have an eclectic taste spanning different eras"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Insights(tt.profile, tt.recs))
		})
	}
}
