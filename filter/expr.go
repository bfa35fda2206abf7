package filter

import (
	"context"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/pkg/dsl"
)

// ExprFilter 用 CEL 表达式筛选候选。
//   - Invert=false：表达式为 false 的候选被过滤（表达式描述"保留条件"）
//   - Invert=true：表达式为 true 的候选被过滤（表达式描述"剔除条件"）
type ExprFilter struct {
	Expr   string
	Invert bool

	prg *dsl.Program
}

// NewExprFilter 编译表达式，语法错误在构建期返回。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Expr: expr, Invert: invert, prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Candidate,
) (bool, error) {
	if f.prg == nil && f.Expr != "" {
		prg, err := dsl.Compile(f.Expr)
		if err != nil {
			return false, err
		}
		f.prg = prg
	}
	ok, err := f.prg.Match(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return ok, nil
	}
	return !ok, nil
}
