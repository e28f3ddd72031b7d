// Package models defines core data structures for process models, similarity
// queries, and search results.
package models

import (
	"time"

	"github.com/CarolineDieterich/LS3/internal/terms"
)

// ProcessModel represents an indexed process model with its extracted term bag.
type ProcessModel struct {
	ID        string                 `json:"id" db:"id"`
	Name      string                 `json:"name" db:"name"`
	Path      string                 `json:"path" db:"path"`
	TermBag   terms.Bag              `json:"terms" db:"terms"`
	Metadata  map[string]interface{} `json:"metadata" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

var _ terms.Provider = (*ProcessModel)(nil)

// Terms returns the model's term multiset.
func (m *ProcessModel) Terms() terms.Bag {
	return m.TermBag
}

// Frequency returns the occurrence count of term in the model, 0 when absent.
func (m *ProcessModel) Frequency(term string) int {
	return m.TermBag.Count(term)
}

// ModelInput is the input for registering or updating a process model.
// Either Path (a PNML file on disk) or PNML (raw document content) must be set.
type ModelInput struct {
	ID       string                 `json:"id,omitempty"`
	Name     string                 `json:"name,omitempty"`
	Path     string                 `json:"path,omitempty"`
	PNML     string                 `json:"pnml,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
