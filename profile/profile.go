// Package profile 从喜爱影片的原始元数据聚合类别口味画像（类型、主题、导演、演员、年代、情绪）。
//
// 调用方负责在聚合前去重，聚合本身与输入顺序无关（同频次按首次出现顺序排列除外）。
package profile

import (
	"fmt"
	"sort"

	"github.com/rushteam/filmtaste/core"
)

// 各列表截断长度。
const (
	MaxGenres      = 5
	MaxThemes      = 5
	MaxDirectors   = 5
	MaxActors      = 5
	MaxDecades     = 3
	MaxMoods       = 3
	CastPerFilm    = 3
	unknownName    = "N/A"
	decadeTemplate = "%ds"
)

// counter 按频次计数，保留首次出现顺序用于同频次排序。
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top 按频次降序返回至多 n 个 key。
func (c *counter) top(n int) []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Aggregate 聚合喜爱影片的类别画像。空输入返回空画像而非错误。
//
// AverageYear 只统计年份已知（>0）的影片；没有已知年份时为 0。
func Aggregate(films []*core.Film) *core.TasteProfile {
	p := core.EmptyTasteProfile()
	if len(films) == 0 {
		return p
	}

	var (
		genres    = newCounter()
		themes    = newCounter()
		directors = newCounter()
		actors    = newCounter()
		decades   = newCounter()
		moods     = newCounter()
		yearSum   int
		yearCount int
	)

	for _, f := range films {
		if f == nil {
			continue
		}
		p.TotalMovies++
		for _, g := range f.Genres {
			genres.add(g)
			if g != "" {
				p.GenreDistribution[g]++
			}
		}
		for _, th := range f.Themes {
			themes.add(th)
		}
		if f.Director != unknownName {
			directors.add(f.Director)
		}
		for i, a := range f.Cast {
			if i >= CastPerFilm {
				break
			}
			actors.add(a)
		}
		if f.Year > 0 {
			decades.add(Decade(f.Year))
			yearSum += f.Year
			yearCount++
		}
		moods.add(f.Mood)
	}

	p.TopGenres = genres.top(MaxGenres)
	p.TopThemes = themes.top(MaxThemes)
	p.TopDirectors = directors.top(MaxDirectors)
	p.TopActors = actors.top(MaxActors)
	p.TopDecades = decades.top(MaxDecades)
	p.TopMoods = moods.top(MaxMoods)
	if yearCount > 0 {
		p.AverageYear = float64(yearSum) / float64(yearCount)
	}
	return p
}

// Decade 把年份归入年代标签，例如 1994 -> "1990s"。
func Decade(year int) string {
	return fmt.Sprintf(decadeTemplate, (year/10)*10)
}
