// Package lsa implements the Latent Semantic Analysis core: projection of a
// query model into a collection's reduced concept space and similarity scoring
// against the collection's documents.
package lsa

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Collection holds the precomputed statistics of an indexed model collection:
// the ordered vocabulary, per-term document and global frequencies, and the
// rank-k truncated SVD factors of the weighted term-document matrix.
//
// A Collection is immutable once built. Queries never write to it, so any
// number of them may run against the same Collection concurrently.
type Collection struct {
	// Vocabulary is the ordered, duplicate-free list of terms. It fixes the
	// index alignment for every term vector in the pipeline.
	Vocabulary []string
	// DF holds per-term document frequencies (number of documents containing
	// the term), aligned to Vocabulary.
	DF []float64
	// GF holds per-term global frequencies (total occurrences across the
	// collection), aligned to Vocabulary.
	GF []float64
	// DocumentIDs gives the identity of each column of Vtk, in order.
	DocumentIDs []string

	// Uk is the term-concept matrix (vocabulary size x k).
	Uk *mat.Dense
	// Sk is the diagonal matrix of singular values (k x k), invertible.
	Sk *mat.Dense
	// Vtk is the concept-document matrix (k x document count).
	Vtk *mat.Dense
}

// TermCount returns the vocabulary size.
func (c *Collection) TermCount() int {
	return len(c.Vocabulary)
}

// DocumentCount returns the number of documents in the collection.
func (c *Collection) DocumentCount() int {
	return len(c.DocumentIDs)
}

// Rank returns the reduced rank k of the SVD factors.
func (c *Collection) Rank() int {
	if c.Sk == nil {
		return 0
	}
	r, _ := c.Sk.Dims()
	return r
}

// Validate checks the dimension couplings between the vocabulary, the
// frequency arrays, and the SVD factors, and the consistency of DF/GF. A
// Collection that fails validation indicates a corrupted or inconsistent
// collection build.
func (c *Collection) Validate() error {
	v := len(c.Vocabulary)
	if v == 0 {
		return fmt.Errorf("collection: empty vocabulary")
	}
	seen := make(map[string]struct{}, v)
	for i, term := range c.Vocabulary {
		if _, dup := seen[term]; dup {
			return fmt.Errorf("collection: duplicate vocabulary term %q (index %d)", term, i)
		}
		seen[term] = struct{}{}
	}
	if len(c.DF) != v {
		return fmt.Errorf("collection: df length %d, want vocabulary size %d", len(c.DF), v)
	}
	if len(c.GF) != v {
		return fmt.Errorf("collection: gf length %d, want vocabulary size %d", len(c.GF), v)
	}
	for i := range c.DF {
		if c.DF[i] > 0 && c.GF[i] <= 0 {
			return fmt.Errorf("collection: term %q (index %d) has df %g but gf %g",
				c.Vocabulary[i], i, c.DF[i], c.GF[i])
		}
	}
	d := len(c.DocumentIDs)
	if d < 2 {
		return fmt.Errorf("collection: %d documents, need at least 2", d)
	}
	if c.Uk == nil || c.Sk == nil || c.Vtk == nil {
		return fmt.Errorf("collection: missing SVD factors")
	}
	ur, uc := c.Uk.Dims()
	sr, sc := c.Sk.Dims()
	vr, vc := c.Vtk.Dims()
	if ur != v {
		return fmt.Errorf("collection: Uk has %d rows, want vocabulary size %d", ur, v)
	}
	if sr != sc {
		return fmt.Errorf("collection: Sk is %dx%d, want square", sr, sc)
	}
	if uc != sr {
		return fmt.Errorf("collection: Uk has %d columns but Sk rank is %d", uc, sr)
	}
	if vr != sr {
		return fmt.Errorf("collection: Vtk has %d rows but Sk rank is %d", vr, sr)
	}
	if vc != d {
		return fmt.Errorf("collection: Vtk has %d columns, want document count %d", vc, d)
	}
	return nil
}
