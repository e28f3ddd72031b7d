// Package search provides similarity search over an indexed model collection
// and fusion of similarity and label scores.
package search

import (
	"sort"

	"github.com/CarolineDieterich/LS3/internal/keyword"
)

// FusedResult holds a model ID and its fused similarity/label scores.
type FusedResult struct {
	ModelID         string
	Score           float64
	SimilarityScore float64
	LabelScore      float64
}

// NormalizeLabelScores normalizes label scores to [0,1] by max.
func NormalizeLabelScores(results []*keyword.LabelResult) map[string]float64 {
	if len(results) == 0 {
		return make(map[string]float64)
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	normalized := make(map[string]float64)
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// Fuse merges similarity and label score maps with weights and returns
// FusedResults sorted by score descending, ties broken by model ID.
func Fuse(similarityScores, labelScores map[string]float64, similarityWeight, labelWeight float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range similarityScores {
		scoreMap[id] = &FusedResult{
			ModelID:         id,
			SimilarityScore: score,
		}
	}
	for id, score := range labelScores {
		if result, exists := scoreMap[id]; exists {
			result.LabelScore = score
		} else {
			scoreMap[id] = &FusedResult{
				ModelID:    id,
				LabelScore: score,
			}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (similarityWeight * result.SimilarityScore) + (labelWeight * result.LabelScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ModelID < results[j].ModelID
	})
	return results
}
