package core

import "github.com/rushteam/filmtaste/pkg/utils"

// Film 是链路中统一的影片元数据记录，来自元数据协作方或调用方输入。
// 身份比较一律使用 ID()（标准化 slug），不要直接比较 Title。
type Film struct {
	Slug        string   `json:"slug,omitempty"`
	Title       string   `json:"title"`
	Year        int      `json:"year,omitempty"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Themes      []string `json:"themes,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	PlotSummary string   `json:"plot_summary,omitempty"`
	Runtime     string   `json:"runtime,omitempty"`
	IMDbID      string   `json:"imdb_id,omitempty"`
	PosterURL   string   `json:"poster_url,omitempty"`
	UserRating  float64  `json:"user_rating,omitempty"`
	Source      string   `json:"source,omitempty"`
}

func NewFilm(title string, year int) *Film {
	return &Film{
		Slug:  utils.Slug(title),
		Title: title,
		Year:  year,
	}
}

// ID 返回影片的标准化标识：有 Title 时一律为 utils.Slug(Title)，
// 调用方传入的 Slug（如 "solaris-1972"）只在缺少 Title 时使用，同样经过标准化。
func (f *Film) ID() string {
	if f == nil {
		return ""
	}
	if f.Title != "" {
		return utils.Slug(f.Title)
	}
	return utils.Slug(f.Slug)
}

// Clone 返回深拷贝，切片字段不与原记录共享底层数组。
func (f *Film) Clone() *Film {
	if f == nil {
		return nil
	}
	out := *f
	out.Cast = append([]string(nil), f.Cast...)
	out.Genres = append([]string(nil), f.Genres...)
	out.Themes = append([]string(nil), f.Themes...)
	return &out
}
