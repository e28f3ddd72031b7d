package models

import "fmt"

// SearchQuery represents a similarity search request. The query model is given
// either as a path to a PNML file or as raw PNML content. Label is an optional
// free-text label query fused with the similarity score.
type SearchQuery struct {
	ModelPath        string  `json:"model_path,omitempty"`
	PNML             string  `json:"pnml,omitempty"`
	Label            string  `json:"label,omitempty"`
	Limit            int     `json:"limit,omitempty"`
	Offset           int     `json:"offset,omitempty"`
	SimilarityWeight float64 `json:"similarity_weight,omitempty"`
	LabelWeight      float64 `json:"label_weight,omitempty"`
	MinScore         float64 `json:"min_score,omitempty"`
	FuzzyEnabled     bool    `json:"fuzzy_enabled,omitempty"` // fuzzy matching for the label query
}

// Validate ensures the query has a model source and normalizes limit and
// weights. An unset limit falls back to defaultLimit and is capped at
// maxLimit; callers pass their configured search limits. When both weights
// are unset, similarity-only search is used.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	if q.ModelPath == "" && q.PNML == "" {
		return fmt.Errorf("query needs model_path or pnml")
	}
	if q.ModelPath != "" && q.PNML != "" {
		return fmt.Errorf("query takes model_path or pnml, not both")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.SimilarityWeight == 0 && q.LabelWeight == 0 {
		q.SimilarityWeight = 1
	}
	if q.LabelWeight > 0 && q.Label == "" {
		return fmt.Errorf("label_weight set without a label query")
	}
	return nil
}
