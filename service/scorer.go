package service

import (
	"context"
	"net/http"

	"github.com/rushteam/filmtaste/core"
)

var _ core.Scorer = (*HTTPScorer)(nil)

// HTTPScorer 调用远程打分服务：POST 影片元数据，返回 core.Analysis JSON。
// 返回的 dimensional_scores 原样透传，校验由 dimension.Decode 负责。
type HTTPScorer struct {
	client
}

func NewHTTPScorer(endpoint string, opts ...Option) *HTTPScorer {
	return &HTTPScorer{client: newClient(endpoint, opts)}
}

func (s *HTTPScorer) Score(ctx context.Context, film *core.Film) (*core.Analysis, error) {
	if film == nil {
		return nil, core.NewDomainError(core.ModuleCollaborator, core.ErrorCodeInvalidInput, "film is nil")
	}
	var out core.Analysis
	if err := s.doJSON(ctx, http.MethodPost, s.Endpoint, film, &out); err != nil {
		return nil, err
	}
	if out.DimensionalScores == nil {
		out.DimensionalScores = map[string]float64{}
	}
	return &out, nil
}
