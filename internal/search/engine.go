package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CarolineDieterich/LS3/internal/config"
	"github.com/CarolineDieterich/LS3/internal/extract"
	"github.com/CarolineDieterich/LS3/internal/keyword"
	"github.com/CarolineDieterich/LS3/internal/lsa"
	"github.com/CarolineDieterich/LS3/internal/models"
	"github.com/CarolineDieterich/LS3/internal/storage"
	"github.com/CarolineDieterich/LS3/internal/terms"
)

// Engine answers similarity queries against the current collection.
type Engine struct {
	storage    storage.Storage
	labelIndex keyword.LabelIndex
	extractor  *extract.Extractor
	config     *config.SearchConfig

	mu         sync.RWMutex
	collection *lsa.Collection
}

// NewEngine creates a search engine. collection may be nil when nothing has
// been indexed yet; SetCollection swaps it in after a (re)build.
func NewEngine(
	store storage.Storage,
	labelIndex keyword.LabelIndex,
	extractor *extract.Extractor,
	collection *lsa.Collection,
	cfg *config.SearchConfig,
) *Engine {
	return &Engine{
		storage:    store,
		labelIndex: labelIndex,
		extractor:  extractor,
		collection: collection,
		config:     cfg,
	}
}

// SetCollection replaces the engine's collection. Called after a rebuild;
// in-flight queries keep using the collection they started with.
func (e *Engine) SetCollection(c *lsa.Collection) {
	e.mu.Lock()
	e.collection = c
	e.mu.Unlock()
}

// Collection returns the current collection, nil when not built.
func (e *Engine) Collection() *lsa.Collection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.collection
}

// Search scores the query model against every model in the collection,
// optionally fuses in label scores, and returns ranked results.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return nil, err
	}
	collection := e.Collection()
	if collection == nil {
		return nil, fmt.Errorf("no collection built yet, index models first")
	}

	bag, err := e.queryBag(query)
	if err != nil {
		return nil, fmt.Errorf("extract query model: %w", err)
	}

	result, err := lsa.Analyze(collection, bag)
	if err != nil {
		return nil, fmt.Errorf("similarity analysis: %w", err)
	}
	similarityScores := make(map[string]float64, collection.DocumentCount())
	for j, id := range collection.DocumentIDs {
		similarityScores[id] = result.Similarities[j]
	}

	labelScores := make(map[string]float64)
	if query.LabelWeight > 0 {
		hits, err := e.labelIndex.Search(ctx, query.Label, e.config.TopKCandidates, &keyword.SearchOptions{
			NameBoost:    e.config.LabelNameBoost,
			FuzzyEnabled: query.FuzzyEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("label search: %w", err)
		}
		labelScores = NormalizeLabelScores(hits)
	}

	fused := Fuse(similarityScores, labelScores, query.SimilarityWeight, query.LabelWeight)

	if query.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= query.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	start := query.Offset
	end := query.Offset + query.Limit
	if start > len(fused) {
		start = len(fused)
	}
	if end > len(fused) {
		end = len(fused)
	}
	paged := fused[start:end]

	response := &models.SearchResponse{
		Results:        make([]*models.SearchResult, 0, len(paged)),
		Total:          len(fused),
		CollectionSize: collection.DocumentCount(),
		QueryTime:      time.Since(startTime).Milliseconds(),
		Query:          queryDescription(query),
	}
	for i, fusedResult := range paged {
		model, err := e.storage.GetModel(ctx, fusedResult.ModelID)
		if err != nil {
			continue
		}
		response.Results = append(response.Results, &models.SearchResult{
			Model:           model,
			Score:           fusedResult.Score,
			SimilarityScore: fusedResult.SimilarityScore,
			LabelScore:      fusedResult.LabelScore,
			Rank:            start + i + 1,
		})
	}
	return response, nil
}

// queryBag extracts the query model's term bag from the raw PNML content or
// the file at ModelPath.
func (e *Engine) queryBag(query *models.SearchQuery) (terms.Bag, error) {
	if query.PNML != "" {
		return e.extractor.ExtractBytes([]byte(query.PNML), ".pnml")
	}
	return e.extractor.Extract(query.ModelPath)
}

func queryDescription(query *models.SearchQuery) string {
	if query.ModelPath != "" {
		return query.ModelPath
	}
	return "(inline pnml)"
}
