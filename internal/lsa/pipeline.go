package lsa

import (
	"errors"
	"fmt"
	"math"

	"github.com/CarolineDieterich/LS3/internal/terms"
	"gonum.org/v1/gonum/mat"
)

// Precondition violations reported by the pipeline stages. They indicate a
// corrupted or inconsistent collection build, not a bad query.
var (
	// ErrDimensionMismatch reports vectors or matrices whose sizes do not
	// line up between stages.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrSingularMatrix reports a singular (non-invertible) Sk at projection time.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrZeroGlobalFrequency reports a term that occurs in the query with a
	// zero collection-wide global frequency. Upstream statistics guarantee
	// gf > 0 for every term with non-zero df, so this can only happen with a
	// corrupted collection.
	ErrZeroGlobalFrequency = errors.New("zero global frequency")
)

// Result is the immutable outcome of running the full pipeline for one query
// model. Each stage's output is retained so callers can inspect intermediate
// vectors (diagnostics, re-scoring against a collection slice).
type Result struct {
	// TermFrequencies holds the raw per-vocabulary-term counts of the query.
	TermFrequencies []float64
	// WeightedFrequencies holds the log-entropy weighted counts.
	WeightedFrequencies []float64
	// PseudoDocument is the query's position in the rank-k concept space.
	PseudoDocument []float64
	// Similarities holds one value in [0,1] per collection document, in
	// Vtk column order.
	Similarities []float64
}

// Analyze runs the four pipeline stages in sequence: align the query's term
// bag to the collection vocabulary, weight the frequencies, project the
// weighted vector into the concept space, and score against every collection
// document. A query sharing no terms with the vocabulary is valid and yields
// the neutral similarity 0.5 everywhere.
func Analyze(c *Collection, bag terms.Bag) (*Result, error) {
	tf := AlignTermFrequencies(c.Vocabulary, bag)
	weighted, err := WeightTermFrequencies(tf, c.DF, c.GF, c.DocumentCount())
	if err != nil {
		return nil, fmt.Errorf("weighting: %w", err)
	}
	pseudo, err := ProjectPseudoDocument(weighted, c.Uk, c.Sk)
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}
	sims, err := ScoreSimilarities(pseudo, c.Sk, c.Vtk)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	return &Result{
		TermFrequencies:     tf,
		WeightedFrequencies: weighted,
		PseudoDocument:      pseudo,
		Similarities:        sims,
	}, nil
}

// AlignTermFrequencies maps the query's term bag onto the fixed vocabulary
// order. Entry i holds the bag's count for vocabulary term i, 0 when absent.
// Terms in the bag that are not part of the vocabulary are dropped: the goal
// is to place the query inside the collection's existing vector space, not to
// extend that space.
func AlignTermFrequencies(vocabulary []string, bag terms.Bag) []float64 {
	tf := make([]float64, len(vocabulary))
	for i, term := range vocabulary {
		tf[i] = float64(bag.Count(term))
	}
	return tf
}

// WeightTermFrequencies applies the log-entropy weighting scheme to a raw
// term-frequency vector. For a term with raw frequency f, global frequency gf,
// document frequency df and collection size n:
//
//	w = log2(f+1) * (1 + df*(p*log2(p))/log2(n))   with p = f/gf
//
// Terms with f = 0 keep weight 0 regardless of their collection statistics.
// The collection's df/gf are never updated from the query: query models are
// transient and do not join the corpus. The divisor is always log2 of the full
// collection size n, matching the original weighting scheme.
func WeightTermFrequencies(tf, df, gf []float64, n int) ([]float64, error) {
	if len(df) != len(tf) || len(gf) != len(tf) {
		return nil, fmt.Errorf("%w: tf length %d, df length %d, gf length %d",
			ErrDimensionMismatch, len(tf), len(df), len(gf))
	}
	if n < 2 {
		return nil, fmt.Errorf("collection has %d documents, need at least 2", n)
	}
	logN := log2(float64(n))
	weighted := make([]float64, len(tf))
	for i, f := range tf {
		if f == 0 {
			continue
		}
		if gf[i] <= 0 {
			return nil, fmt.Errorf("%w: term index %d has frequency %g", ErrZeroGlobalFrequency, i, f)
		}
		p := f / gf[i]
		weighted[i] = log2(f+1) * (1 + df[i]*(p*log2(p))/logN)
	}
	return weighted, nil
}

// ProjectPseudoDocument projects the weighted term vector into the rank-k
// concept space using the standard LSA pseudo-document formula
//
//	pseudo = (weighted^T * Uk) * Sk^-1
//
// The multiplication order matters: the row vector is applied against Uk
// first, then the result against the inverse of Sk. A singular Sk is a fatal
// precondition violation; no regularization is attempted.
func ProjectPseudoDocument(weighted []float64, uk, sk *mat.Dense) ([]float64, error) {
	ur, uc := uk.Dims()
	if len(weighted) != ur {
		return nil, fmt.Errorf("%w: weighted vector length %d, Uk has %d rows",
			ErrDimensionMismatch, len(weighted), ur)
	}
	sr, sc := sk.Dims()
	if sr != sc {
		return nil, fmt.Errorf("%w: Sk is %dx%d, want square", ErrDimensionMismatch, sr, sc)
	}
	if uc != sr {
		return nil, fmt.Errorf("%w: Uk has %d columns but Sk rank is %d", ErrDimensionMismatch, uc, sr)
	}

	row := mat.NewDense(1, len(weighted), weighted)
	var projected mat.Dense
	projected.Mul(row, uk)

	var inverse mat.Dense
	if err := inverse.Inverse(sk); err != nil {
		return nil, fmt.Errorf("%w: Sk is not invertible: %v", ErrSingularMatrix, err)
	}
	var pseudo mat.Dense
	pseudo.Mul(&projected, &inverse)

	out := make([]float64, uc)
	copy(out, pseudo.RawRowView(0))
	return out, nil
}

// ScoreSimilarities scores the pseudo-document against every collection
// document. Each column of Sk*Vtk is compared by cosine, mapped from [-1,1]
// into [0,1] via (cos+1)/2: 1 is maximal similarity, 0.5 orthogonality, 0
// anti-parallel. When either vector has zero length the cosine is undefined;
// it is treated as 0, yielding the neutral similarity 0.5. Values are emitted
// in Vtk column order; no sorting happens here.
func ScoreSimilarities(pseudo []float64, sk, vtk *mat.Dense) ([]float64, error) {
	sr, sc := sk.Dims()
	if sr != sc {
		return nil, fmt.Errorf("%w: Sk is %dx%d, want square", ErrDimensionMismatch, sr, sc)
	}
	vr, vc := vtk.Dims()
	if sr != vr {
		return nil, fmt.Errorf("%w: Sk rank is %d but Vtk has %d rows", ErrDimensionMismatch, sr, vr)
	}
	if len(pseudo) != sr {
		return nil, fmt.Errorf("%w: pseudo-document length %d, concept space rank %d",
			ErrDimensionMismatch, len(pseudo), sr)
	}

	var scaled mat.Dense
	scaled.Mul(sk, vtk)

	queryNorm := norm(pseudo)
	sims := make([]float64, vc)
	column := make([]float64, vr)
	for j := 0; j < vc; j++ {
		mat.Col(column, j, &scaled)
		sims[j] = (cosine(pseudo, column, queryNorm) + 1) / 2
	}
	return sims, nil
}

// cosine returns the cosine of the angle between a and b, with a's norm
// precomputed. A zero-length vector on either side yields 0.
func cosine(a, b []float64, aNorm float64) float64 {
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (aNorm * bNorm)
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// log2 is the natural logarithm divided by ln 2, matching the original
// weighting scheme exactly.
func log2(x float64) float64 {
	return math.Log(x) / math.Log(2)
}
