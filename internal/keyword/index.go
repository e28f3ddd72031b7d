// Package keyword provides label search over indexed process models.
package keyword

import (
	"context"

	"github.com/CarolineDieterich/LS3/internal/models"
)

// SearchOptions optional parameters for label search. Nil means use defaults.
type SearchOptions struct {
	// NameBoost multiplies the score contribution from matches in the model
	// name. Values > 1 make name matches rank higher. Use 1.0 for no boost.
	NameBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	// Default is 2 when FuzzyEnabled is true.
	Fuzziness int
}

// LabelIndex defines label search operations over process models.
type LabelIndex interface {
	Index(ctx context.Context, id string, model *models.ProcessModel) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*LabelResult, error)
	Delete(ctx context.Context, id string) error
	// DocCount returns the total number of models in the index.
	DocCount() (uint64, error)
	Close() error
}

// LabelResult is a single label search hit.
type LabelResult struct {
	ID    string
	Score float64
}
