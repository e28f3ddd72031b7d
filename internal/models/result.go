package models

// SearchResult represents a single hit with the model and its scores.
type SearchResult struct {
	Model *ProcessModel `json:"model"`
	// Score is the fused score used for ranking.
	Score float64 `json:"score"`
	// SimilarityScore is the raw LSSM value in [0,1].
	SimilarityScore float64 `json:"similarity_score"`
	// LabelScore is the normalized keyword score when a label query was given.
	LabelScore float64 `json:"label_score,omitempty"`
	Rank       int     `json:"rank"`
}

// SearchResponse is the response for a similarity search request.
type SearchResponse struct {
	Results []*SearchResult `json:"results"`
	// Total is the number of hits before pagination.
	Total          int    `json:"total"`
	CollectionSize int    `json:"collection_size"`
	QueryTime      int64  `json:"query_time_ms"`
	Query          string `json:"query"`
}
