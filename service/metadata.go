package service

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/utils"
)

var _ core.MetadataProvider = (*HTTPMetadata)(nil)

// 元数据来源
const (
	SourceOMDb     = "omdb"
	SourceFallback = "fallback"
)

// MaxCast 是保留的主演人数上限。
const MaxCast = 5

// OMDbMovie 是 OMDb 风格的单片响应。
type OMDbMovie struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Director string `json:"Director"`
	Actors   string `json:"Actors"`
	Genre    string `json:"Genre"`
	Plot     string `json:"Plot"`
	Runtime  string `json:"Runtime"`
	IMDbID   string `json:"imdbID"`
	Poster   string `json:"Poster"`
}

// HTTPMetadata 按标题（和年份）查询 OMDb 风格的元数据服务。
// 未找到时返回 FallbackFilm，不返回错误。
type HTTPMetadata struct {
	client
}

func NewHTTPMetadata(endpoint string, opts ...Option) *HTTPMetadata {
	return &HTTPMetadata{client: newClient(endpoint, opts)}
}

func (m *HTTPMetadata) Lookup(ctx context.Context, title string, year int) (*core.Film, error) {
	q := url.Values{}
	q.Set("t", title)
	q.Set("plot", "short")
	if year > 0 {
		q.Set("y", strconv.Itoa(year))
	}
	if m.APIKey != "" {
		q.Set("apikey", m.APIKey)
	}
	u := m.Endpoint
	if strings.Contains(u, "?") {
		u += "&" + q.Encode()
	} else {
		u += "?" + q.Encode()
	}

	var movie OMDbMovie
	if err := m.doJSON(ctx, http.MethodGet, u, nil, &movie); err != nil {
		return nil, err
	}
	if strings.EqualFold(movie.Response, "False") || movie.Title == "" {
		return FallbackFilm(title), nil
	}
	return NormalizeOMDb(movie), nil
}

// NormalizeOMDb 把 OMDb 响应转换为 core.Film。
func NormalizeOMDb(m OMDbMovie) *core.Film {
	return &core.Film{
		Slug:        utils.Slug(m.Title),
		Title:       m.Title,
		Year:        SafeInt(m.Year),
		Director:    m.Director,
		Cast:        ParseCast(m.Actors),
		Genres:      ParseGenres(m.Genre),
		PlotSummary: m.Plot,
		Runtime:     m.Runtime,
		IMDbID:      m.IMDbID,
		PosterURL:   m.Poster,
		Source:      SourceOMDb,
	}
}

// ParseGenres 解析逗号分隔的类型列表，空值或 "N/A" 时为 ["Drama"]。
func ParseGenres(s string) []string {
	if s == "" || s == "N/A" {
		return []string{"Drama"}
	}
	out := splitList(s, 0)
	if len(out) == 0 {
		return []string{"Drama"}
	}
	return out
}

// ParseCast 解析逗号分隔的演员列表，最多 MaxCast 人。
func ParseCast(s string) []string {
	if s == "" || s == "N/A" {
		return []string{}
	}
	return splitList(s, MaxCast)
}

var firstInt = regexp.MustCompile(`\d+`)

// SafeInt 提取字符串中的第一个整数，例如 "1999–2003" 得到 1999；无数字时为 0。
func SafeInt(s string) int {
	m := firstInt.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// FallbackFilm 是元数据不可用时的占位记录，保留调用方的标题作为 slug。
func FallbackFilm(title string) *core.Film {
	return &core.Film{
		Slug:        utils.Slug(title),
		Title:       "Movie Data Unavailable",
		Year:        2020,
		Director:    "Unknown",
		Cast:        []string{},
		Genres:      []string{"Drama"},
		PlotSummary: "Movie information temporarily unavailable.",
		Source:      SourceFallback,
	}
}

func splitList(s string, limit int) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
