package models

import (
	"testing"

	"github.com/CarolineDieterich/LS3/internal/terms"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   SearchQuery
		wantErr bool
	}{
		{"model path", SearchQuery{ModelPath: "order.pnml"}, false},
		{"raw pnml", SearchQuery{PNML: "<pnml/>"}, false},
		{"no model source", SearchQuery{Label: "order"}, true},
		{"both sources", SearchQuery{ModelPath: "a.pnml", PNML: "<pnml/>"}, true},
		{"label weight without label", SearchQuery{ModelPath: "a.pnml", LabelWeight: 0.5}, true},
		{"label weight with label", SearchQuery{ModelPath: "a.pnml", Label: "order", LabelWeight: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(10, 100)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate()=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchQuery_ValidateDefaults(t *testing.T) {
	q := SearchQuery{ModelPath: "a.pnml", Offset: -2}
	if err := q.Validate(25, 100); err != nil {
		t.Fatal(err)
	}
	if q.Limit != 25 {
		t.Errorf("Limit=%d, want configured default 25", q.Limit)
	}
	if q.Offset != 0 {
		t.Errorf("Offset=%d, want 0", q.Offset)
	}
	if q.SimilarityWeight != 1 {
		t.Errorf("SimilarityWeight=%g, want 1", q.SimilarityWeight)
	}

	q = SearchQuery{ModelPath: "a.pnml", Limit: 500}
	if err := q.Validate(25, 100); err != nil {
		t.Fatal(err)
	}
	if q.Limit != 100 {
		t.Errorf("Limit=%d, want clamped 100", q.Limit)
	}
}

func TestProcessModel_TermProvider(t *testing.T) {
	m := &ProcessModel{ID: "m1", TermBag: terms.Bag{"order": 2, "check": 1}}
	var p terms.Provider = m
	if p.Frequency("order") != 2 {
		t.Errorf("Frequency(order)=%d, want 2", p.Frequency("order"))
	}
	if p.Frequency("missing") != 0 {
		t.Errorf("Frequency(missing)=%d, want 0", p.Frequency("missing"))
	}
	if p.Terms().Total() != 3 {
		t.Errorf("Terms().Total()=%d, want 3", p.Terms().Total())
	}
}
