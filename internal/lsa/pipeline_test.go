package lsa

import (
	"errors"
	"math"
	"testing"

	"github.com/CarolineDieterich/LS3/internal/terms"
	"gonum.org/v1/gonum/mat"
)

const eps = 1e-9

// testCollection mirrors the small hand-computed scenario used throughout:
// vocabulary [a b c], gf [4 2 6], df [2 1 3], three documents, rank 2.
func testCollection() *Collection {
	return &Collection{
		Vocabulary:  []string{"a", "b", "c"},
		DF:          []float64{2, 1, 3},
		GF:          []float64{4, 2, 6},
		DocumentIDs: []string{"m1", "m2", "m3"},
		Uk:          mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1}),
		Sk:          mat.NewDense(2, 2, []float64{2, 0, 0, 1}),
		Vtk:         mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1}),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestAlignTermFrequencies(t *testing.T) {
	vocab := []string{"a", "b", "c"}
	tests := []struct {
		name string
		bag  terms.Bag
		want []float64
	}{
		{"partial overlap", terms.Bag{"a": 2, "b": 1}, []float64{2, 1, 0}},
		{"out-of-vocabulary terms dropped", terms.Bag{"a": 1, "z": 9}, []float64{1, 0, 0}},
		{"disjoint bag yields all zeros", terms.Bag{"x": 3, "y": 1}, []float64{0, 0, 0}},
		{"empty bag", terms.Bag{}, []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignTermFrequencies(vocab, tt.bag)
			if len(got) != len(vocab) {
				t.Fatalf("length %d, want %d", len(got), len(vocab))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tf[%d]=%g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWeightTermFrequencies(t *testing.T) {
	tf := []float64{2, 1, 0}
	df := []float64{2, 1, 3}
	gf := []float64{4, 2, 6}

	weighted, err := WeightTermFrequencies(tf, df, gf, 3)
	if err != nil {
		t.Fatal(err)
	}

	// Closed form: w0 = log2(3)*(1 + 2*(0.5*log2(0.5))/log2(3)) = log2(3)-1,
	// w1 = log2(2)*(1 + 1*(0.5*log2(0.5))/log2(3)) = 1 - 0.5/log2(3).
	log2of3 := math.Log(3) / math.Log(2)
	want := []float64{log2of3 - 1, 1 - 0.5/log2of3, 0}
	for i := range want {
		if !almostEqual(weighted[i], want[i]) {
			t.Errorf("weighted[%d]=%.12f, want %.12f", i, weighted[i], want[i])
		}
	}
}

func TestWeightTermFrequencies_ZeroPreservation(t *testing.T) {
	tf := []float64{0, 3, 0, 1}
	df := []float64{5, 2, 7, 1}
	gf := []float64{9, 6, 8, 2}
	weighted, err := WeightTermFrequencies(tf, df, gf, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := range tf {
		if tf[i] == 0 && weighted[i] != 0 {
			t.Errorf("weighted[%d]=%g for zero frequency, want 0", i, weighted[i])
		}
	}
}

func TestWeightTermFrequencies_ZeroGlobalFrequency(t *testing.T) {
	_, err := WeightTermFrequencies([]float64{1}, []float64{1}, []float64{0}, 3)
	if !errors.Is(err, ErrZeroGlobalFrequency) {
		t.Fatalf("err=%v, want ErrZeroGlobalFrequency", err)
	}
}

func TestWeightTermFrequencies_DimensionMismatch(t *testing.T) {
	_, err := WeightTermFrequencies([]float64{1, 2}, []float64{1}, []float64{1, 1}, 3)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err=%v, want ErrDimensionMismatch", err)
	}
}

func TestProjectPseudoDocument(t *testing.T) {
	c := testCollection()
	weighted := []float64{0.5849625007211563, 0.6845351232142713, 0}

	pseudo, err := ProjectPseudoDocument(weighted, c.Uk, c.Sk)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.29248125036057815, 0.6845351232142713}
	if len(pseudo) != 2 {
		t.Fatalf("pseudo length %d, want 2", len(pseudo))
	}
	for i := range want {
		if !almostEqual(pseudo[i], want[i]) {
			t.Errorf("pseudo[%d]=%.12f, want %.12f", i, pseudo[i], want[i])
		}
	}
}

func TestProjectPseudoDocument_ZeroVector(t *testing.T) {
	c := testCollection()
	pseudo, err := ProjectPseudoDocument([]float64{0, 0, 0}, c.Uk, c.Sk)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range pseudo {
		if v != 0 {
			t.Errorf("pseudo[%d]=%g, want 0", i, v)
		}
	}
}

func TestProjectPseudoDocument_SingularSk(t *testing.T) {
	uk := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	singular := mat.NewDense(2, 2, []float64{1, 0, 0, 0})
	_, err := ProjectPseudoDocument([]float64{1, 1}, uk, singular)
	if !errors.Is(err, ErrSingularMatrix) {
		t.Fatalf("err=%v, want ErrSingularMatrix", err)
	}
}

func TestProjectPseudoDocument_DimensionMismatch(t *testing.T) {
	c := testCollection()
	_, err := ProjectPseudoDocument([]float64{1, 2}, c.Uk, c.Sk)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err=%v, want ErrDimensionMismatch", err)
	}
}

func TestScoreSimilarities_Range(t *testing.T) {
	c := testCollection()
	pseudo := []float64{0.3, -0.8}
	sims, err := ScoreSimilarities(pseudo, c.Sk, c.Vtk)
	if err != nil {
		t.Fatal(err)
	}
	if len(sims) != 3 {
		t.Fatalf("got %d similarities, want 3", len(sims))
	}
	for j, s := range sims {
		if s < 0 || s > 1 {
			t.Errorf("sims[%d]=%g outside [0,1]", j, s)
		}
	}
}

func TestScoreSimilarities_ScaleInvariance(t *testing.T) {
	c := testCollection()
	pseudo := []float64{0.29248125036057815, 0.6845351232142713}
	base, err := ScoreSimilarities(pseudo, c.Sk, c.Vtk)
	if err != nil {
		t.Fatal(err)
	}
	for _, scale := range []float64{0.001, 2, 1000} {
		scaled := make([]float64, len(pseudo))
		for i := range pseudo {
			scaled[i] = pseudo[i] * scale
		}
		sims, err := ScoreSimilarities(scaled, c.Sk, c.Vtk)
		if err != nil {
			t.Fatal(err)
		}
		for j := range base {
			if !almostEqual(sims[j], base[j]) {
				t.Errorf("scale %g: sims[%d]=%.12f, want %.12f", scale, j, sims[j], base[j])
			}
		}
	}
}

func TestScoreSimilarities_ZeroPseudoDocument(t *testing.T) {
	c := testCollection()
	sims, err := ScoreSimilarities([]float64{0, 0}, c.Sk, c.Vtk)
	if err != nil {
		t.Fatal(err)
	}
	for j, s := range sims {
		if s != 0.5 {
			t.Errorf("sims[%d]=%g, want neutral 0.5", j, s)
		}
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	c := testCollection()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	result, err := Analyze(c, terms.Bag{"a": 2, "b": 1})
	if err != nil {
		t.Fatal(err)
	}

	wantTF := []float64{2, 1, 0}
	for i := range wantTF {
		if result.TermFrequencies[i] != wantTF[i] {
			t.Errorf("tf[%d]=%g, want %g", i, result.TermFrequencies[i], wantTF[i])
		}
	}
	wantWeighted := []float64{0.5849625007211563, 0.6845351232142713, 0}
	for i := range wantWeighted {
		if !almostEqual(result.WeightedFrequencies[i], wantWeighted[i]) {
			t.Errorf("weighted[%d]=%.12f, want %.12f", i, result.WeightedFrequencies[i], wantWeighted[i])
		}
	}
	wantPseudo := []float64{0.29248125036057815, 0.6845351232142713}
	for i := range wantPseudo {
		if !almostEqual(result.PseudoDocument[i], wantPseudo[i]) {
			t.Errorf("pseudo[%d]=%.12f, want %.12f", i, result.PseudoDocument[i], wantPseudo[i])
		}
	}
	wantSims := []float64{0.696453959424004, 0.9597889100735595, 0.8813376147334266}
	for j := range wantSims {
		if !almostEqual(result.Similarities[j], wantSims[j]) {
			t.Errorf("sims[%d]=%.12f, want %.12f", j, result.Similarities[j], wantSims[j])
		}
	}
}

func TestAnalyze_DisjointQuery(t *testing.T) {
	c := testCollection()
	result, err := Analyze(c, terms.Bag{"unrelated": 4, "terms": 2})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range result.WeightedFrequencies {
		if v != 0 {
			t.Errorf("weighted[%d]=%g, want 0", i, v)
		}
	}
	for j, s := range result.Similarities {
		if s != 0.5 {
			t.Errorf("sims[%d]=%g, want neutral 0.5", j, s)
		}
	}
}

func TestAnalyze_StageIdentifiedErrors(t *testing.T) {
	c := testCollection()
	c.GF = []float64{0, 2, 6} // corrupt: term "a" has df 2 but gf 0
	_, err := Analyze(c, terms.Bag{"a": 1})
	if err == nil {
		t.Fatal("expected error for zero gf")
	}
	if !errors.Is(err, ErrZeroGlobalFrequency) {
		t.Errorf("err=%v, want ErrZeroGlobalFrequency", err)
	}
}
