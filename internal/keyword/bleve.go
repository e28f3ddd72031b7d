// Package keyword provides the Bleve implementation of LabelIndex.
package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/CarolineDieterich/LS3/internal/models"
)

// BleveIndex implements LabelIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// labelDocument is what gets indexed per model: the model name and the flat
// label text reconstructed from the term bag (terms repeated by count, so
// term frequency still influences scoring).
type labelDocument struct {
	Name   string `json:"name"`
	Labels string `json:"labels"`
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused so unchanged models are not re-indexed.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so label queries
	// match the extracted terms exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("labels", textFieldMapping)
	im.AddDocumentMapping("model", docMapping)
	im.DefaultType = "model"
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemoryBleveIndex creates an in-memory index, used by tests.
func NewMemoryBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a model's name and label terms by id.
func (b *BleveIndex) Index(ctx context.Context, id string, model *models.ProcessModel) error {
	return b.index.Index(id, labelDocument{
		Name:   strings.ReplaceAll(model.Name, "_", " "),
		Labels: flattenTerms(model),
	})
}

// flattenTerms rebuilds flat label text from the term bag, repeating each
// term by its occurrence count.
func flattenTerms(model *models.ProcessModel) string {
	var sb strings.Builder
	for _, term := range model.TermBag.SortedTerms() {
		for i := 0; i < model.TermBag.Count(term); i++ {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(term)
		}
	}
	return sb.String()
}

// Search runs a match query over name and labels and returns up to limit
// results. With opts.NameBoost > 1 the name field contributes boosted scores;
// with opts.FuzzyEnabled terms match within the configured edit distance.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*LabelResult, error) {
	nameBoost := 1.0
	fuzzyEnabled := false
	fuzziness := 2
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	labelsQuery := b.fieldQuery(query, "labels", 1.0, fuzzyEnabled, fuzziness)
	nameQuery := b.fieldQuery(query, "name", nameBoost, fuzzyEnabled, fuzziness)
	search := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(labelsQuery, nameQuery))
	search.Size = limit

	results, err := b.index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*LabelResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &LabelResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// fieldQuery builds a match or fuzzy disjunction query for one field.
func (b *BleveIndex) fieldQuery(query, field string, boost float64, fuzzy bool, fuzziness int) blevequery.Query {
	if !fuzzy {
		q := bleve.NewMatchQuery(query)
		q.SetField(field)
		q.SetBoost(boost)
		return q
	}
	terms := strings.Fields(strings.ToLower(query))
	subs := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetField(field)
		fq.SetFuzziness(fuzziness)
		fq.SetBoost(boost)
		subs = append(subs, fq)
	}
	return bleve.NewDisjunctionQuery(subs...)
}

// Delete removes a model from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed models.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
