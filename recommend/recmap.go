package recommend

import (
	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/utils"
)

// 节点类型
const (
	NodeLoved       = "loved"
	NodeRecommended = "recommended"
)

// MapNode 是推荐关系图中的一部影片。
type MapNode struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Type  string  `json:"type"`
	Year  int     `json:"year,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// MapEdge 连接种子影片与由它召回的推荐，Weight 为向量相似度。
type MapEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// RecommendationMap 是喜爱影片与推荐之间的关系图。
type RecommendationMap struct {
	Nodes []MapNode `json:"nodes"`
	Edges []MapEdge `json:"edges"`

	TotalLoved           int `json:"total_loved"`
	TotalRecommendations int `json:"total_recommendations"`
}

// BuildRecommendationMap 为每部喜爱影片与每条推荐建节点，
// 推荐的 SimilarTo 能对应到喜爱影片时连一条边。
func BuildRecommendationMap(loved []*core.Film, recs []*core.Candidate) *RecommendationMap {
	m := &RecommendationMap{
		Nodes: make([]MapNode, 0, len(loved)+len(recs)),
		Edges: make([]MapEdge, 0, len(recs)),
	}
	for _, f := range loved {
		m.Nodes = append(m.Nodes, MapNode{ID: f.ID(), Title: f.Title, Type: NodeLoved, Year: f.Year})
	}
	seeds := make(map[string]string, len(loved))
	for _, f := range loved {
		seeds[utils.Slug(f.Title)] = f.ID()
	}

	for _, r := range recs {
		if r == nil {
			continue
		}
		m.Nodes = append(m.Nodes, MapNode{
			ID:    r.ID(),
			Title: r.Title,
			Type:  NodeRecommended,
			Year:  r.Year,
			Score: r.Score,
		})
		if src, ok := seeds[utils.Slug(r.SimilarTo)]; ok {
			m.Edges = append(m.Edges, MapEdge{Source: src, Target: r.ID(), Weight: r.BaseSimilarity})
		}
	}
	m.TotalLoved = len(loved)
	m.TotalRecommendations = len(m.Nodes) - len(loved)
	return m
}
