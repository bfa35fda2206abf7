package profile

import (
	"fmt"

	"github.com/rushteam/filmtaste/core"
)

// 年代与高分阈值。
const (
	ClassicBefore     = 1990
	ContemporaryAfter = 2010
	HighMatchScore    = 0.7
	HighMatchMinCount = 5
)

// Insights 生成面向用户的画像洞察。没有已知年份时不输出年代洞察。
func Insights(p *core.TasteProfile, recs []*core.Candidate) []string {
	insights := make([]string, 0, 4)
	if p == nil {
		return insights
	}

	if len(p.TopGenres) > 0 {
		insights = append(insights, fmt.Sprintf("Your taste strongly favors %s films", p.TopGenres[0]))
	}
	if len(p.TopDirectors) > 0 {
		insights = append(insights, fmt.Sprintf("You're a fan of %s's work", p.TopDirectors[0]))
	}

	switch {
	case p.AverageYear <= 0:
	case p.AverageYear < ClassicBefore:
		insights = append(insights, "You appreciate classic cinema")
	case p.AverageYear > ContemporaryAfter:
		insights = append(insights, "You enjoy contemporary films")
	default:
		insights = append(insights, "You have an eclectic taste spanning different eras")
	}

	high := 0
	for _, c := range recs {
		if c != nil && c.Score > HighMatchScore {
			high++
		}
	}
	if high > HighMatchMinCount {
		insights = append(insights, fmt.Sprintf("Found %d highly matched recommendations for you", high))
	}
	return insights
}
