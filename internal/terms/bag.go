// Package terms provides the term multiset (bag) representation of a process
// model and the tokenizer that produces it from label text.
package terms

import "sort"

// Bag is a multiset of structural terms with their occurrence counts.
type Bag map[string]int

// Provider exposes a term multiset. Implemented by query models and by
// collection documents alike.
type Provider interface {
	// Terms returns the term multiset.
	Terms() Bag
	// Frequency returns the occurrence count of term, 0 when absent.
	Frequency(term string) int
}

// NewBag returns an empty bag.
func NewBag() Bag {
	return make(Bag)
}

// Add increments the count of term by n.
func (b Bag) Add(term string, n int) {
	if n <= 0 {
		return
	}
	b[term] += n
}

// Count returns the occurrence count of term, 0 when absent.
func (b Bag) Count(term string) int {
	return b[term]
}

// Total returns the sum of all occurrence counts.
func (b Bag) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

// Merge adds every term of other into b.
func (b Bag) Merge(other Bag) {
	for term, n := range other {
		b.Add(term, n)
	}
}

// SortedTerms returns the distinct terms in lexicographic order.
func (b Bag) SortedTerms() []string {
	out := make([]string, 0, len(b))
	for term := range b {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}
