// Package collection builds the LSA concept space from a set of indexed
// process models: vocabulary, frequency statistics, weighted term-document
// matrix, and its truncated SVD.
package collection

import (
	"fmt"

	"github.com/CarolineDieterich/LS3/internal/lsa"
	"github.com/CarolineDieterich/LS3/internal/terms"
	"gonum.org/v1/gonum/mat"
)

// Singular values below maxValue*svTolerance count as zero when deciding the
// effective rank, keeping Sk invertible.
const svTolerance = 1e-12

// Document pairs a model ID with its extracted term bag.
type Document struct {
	ID  string
	Bag terms.Bag
}

var _ terms.Provider = Document{}

// Terms returns the document's term multiset.
func (d Document) Terms() terms.Bag {
	return d.Bag
}

// Frequency returns the occurrence count of term in the document, 0 when absent.
func (d Document) Frequency(term string) int {
	return d.Bag.Count(term)
}

// Build constructs the LSA collection from docs. The vocabulary is assembled
// in first-seen order (documents in the given order, terms of each document in
// lexicographic order), the raw term-document matrix is weighted column by
// column with the same log-entropy scheme queries use, and the weighted matrix
// is factorized by thin SVD truncated to the requested rank. A rank of 0 (or
// one exceeding the matrix's effective rank) keeps every non-negligible
// singular value.
func Build(docs []Document, rank int) (*lsa.Collection, error) {
	if len(docs) < 2 {
		return nil, fmt.Errorf("collection build: %d documents, need at least 2", len(docs))
	}

	vocabulary := buildVocabulary(docs)
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("collection build: no terms in any document")
	}
	v, d := len(vocabulary), len(docs)

	// Raw term-document matrix and the df/gf statistics.
	df := make([]float64, v)
	gf := make([]float64, v)
	raw := mat.NewDense(v, d, nil)
	for j, doc := range docs {
		for i, term := range vocabulary {
			f := float64(doc.Frequency(term))
			if f == 0 {
				continue
			}
			raw.Set(i, j, f)
			df[i]++
			gf[i] += f
		}
	}

	// Weight each document column with the query-side scheme so that queries
	// and collection documents live in the same weighted space.
	weighted := mat.NewDense(v, d, nil)
	column := make([]float64, v)
	for j := 0; j < d; j++ {
		mat.Col(column, j, raw)
		wcol, err := lsa.WeightTermFrequencies(column, df, gf, d)
		if err != nil {
			return nil, fmt.Errorf("collection build: weight document %q: %w", docs[j].ID, err)
		}
		weighted.SetCol(j, wcol)
	}

	uk, sk, vtk, err := truncatedSVD(weighted, rank)
	if err != nil {
		return nil, fmt.Errorf("collection build: %w", err)
	}

	ids := make([]string, d)
	for j, doc := range docs {
		ids[j] = doc.ID
	}
	c := &lsa.Collection{
		Vocabulary:  vocabulary,
		DF:          df,
		GF:          gf,
		DocumentIDs: ids,
		Uk:          uk,
		Sk:          sk,
		Vtk:         vtk,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("collection build: %w", err)
	}
	return c, nil
}

// buildVocabulary collects distinct terms in first-seen order. Terms within a
// single document are visited in lexicographic order so the vocabulary is
// deterministic for a given document ordering.
func buildVocabulary(docs []Document) []string {
	seen := make(map[string]struct{})
	var vocabulary []string
	for _, doc := range docs {
		for _, term := range doc.Bag.SortedTerms() {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			vocabulary = append(vocabulary, term)
		}
	}
	return vocabulary
}

// truncatedSVD factorizes a (v x d) by thin SVD and truncates to rank k
// non-negligible singular values, returning Uk (v x k), Sk (k x k diagonal),
// and Vtk (k x d).
func truncatedSVD(a *mat.Dense, rank int) (uk, sk, vtk *mat.Dense, err error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, nil, fmt.Errorf("svd factorization failed")
	}
	values := svd.Values(nil)

	effective := 0
	for _, s := range values {
		if s > values[0]*svTolerance {
			effective++
		}
	}
	if effective == 0 {
		return nil, nil, nil, fmt.Errorf("weighted matrix has rank 0")
	}
	k := effective
	if rank > 0 && rank < k {
		k = rank
	}

	rows, cols := a.Dims()
	var u, vm mat.Dense
	svd.UTo(&u)
	svd.VTo(&vm)

	uk = mat.DenseCopyOf(u.Slice(0, rows, 0, k))
	sk = mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		sk.Set(i, i, values[i])
	}
	vtk = mat.DenseCopyOf(vm.Slice(0, cols, 0, k).T())
	return uk, sk, vtk, nil
}
