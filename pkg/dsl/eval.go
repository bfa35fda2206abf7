// Package dsl 提供基于 CEL (Common Expression Language) 的候选过滤表达式。
//
// 可用变量：
//   - film：title / slug / year / director / genres / themes / mood / cast
//   - item：score / similarity / similar_to / breakdown
//   - label：候选标签，label.recall_source 直接取 value
//   - rctx：user_id / diversity / limit / params
//
// 示例：
//   - `film.year >= 1970 && item.similarity > 0.3`
//   - `"Horror" in film.genres`
//   - `film.director != "Unknown"`
//   - `label.recall_source != null && label.recall_source.startsWith("similar")`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/filmtaste/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("film", cel.DynType),
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的表达式，可并发复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。空表达式返回 nil Program，Match 恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Match 对候选求值，表达式必须返回 bool。
func (p *Program) Match(c *core.Candidate, rctx *core.RecommendContext) (bool, error) {
	if p == nil {
		return true, nil
	}
	if c == nil {
		return false, nil
	}
	out, _, err := p.prg.Eval(buildInput(c, rctx))
	if err != nil {
		// 访问不存在的 label 会报错，应先用 label.key != null 判断
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Evaluate 编译并立即求值，适合一次性表达式；高频场景请复用 Compile 的结果。
func Evaluate(expr string, c *core.Candidate, rctx *core.RecommendContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(c, rctx)
}

func buildInput(c *core.Candidate, rctx *core.RecommendContext) map[string]any {
	film := map[string]any{
		"title":    c.Title,
		"slug":     c.ID(),
		"year":     int64(c.Year),
		"director": c.Director,
		"genres":   nonNil(c.Genres),
		"themes":   nonNil(c.Themes),
		"cast":     nonNil(c.Cast),
		"mood":     c.Mood,
	}

	item := map[string]any{
		"score":      c.Score,
		"similarity": c.BaseSimilarity,
		"similar_to": c.SimilarTo,
		"breakdown": map[string]any{
			"similarity":     c.Breakdown.Similarity,
			"genre_match":    c.Breakdown.GenreMatch,
			"theme_match":    c.Breakdown.ThemeMatch,
			"director_match": c.Breakdown.DirectorMatch,
			"recency":        c.Breakdown.Recency,
		},
	}

	labels := make(map[string]any, len(c.Labels))
	for k, v := range c.Labels {
		labels[k] = v.Value
	}

	r := map[string]any{
		"user_id":   "",
		"diversity": 0.0,
		"limit":     int64(0),
		"params":    map[string]any{},
	}
	if rctx != nil {
		r["user_id"] = rctx.UserID
		r["diversity"] = rctx.DiversityFactor
		r["limit"] = int64(rctx.Limit)
		if rctx.Params != nil {
			r["params"] = rctx.Params
		}
	}

	return map[string]any{
		"film":  film,
		"item":  item,
		"label": labels,
		"rctx":  r,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
