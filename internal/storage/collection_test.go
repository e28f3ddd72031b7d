package storage

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/CarolineDieterich/LS3/internal/lsa"
	"gonum.org/v1/gonum/mat"
)

func sampleCollection() *lsa.Collection {
	return &lsa.Collection{
		Vocabulary:  []string{"check", "invoice", "order"},
		DF:          []float64{2, 1, 3},
		GF:          []float64{4, 2, 6},
		DocumentIDs: []string{"m1", "m2", "m3"},
		Uk:          mat.NewDense(3, 2, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}),
		Sk:          mat.NewDense(2, 2, []float64{2.5, 0, 0, 1.25}),
		Vtk:         mat.NewDense(2, 3, []float64{0.7, 0.8, 0.9, 1.0, 1.1, 1.2}),
	}
}

func TestCollection_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indices", "collection.ls3")
	want := sampleCollection()

	if err := SaveCollection(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadCollection(path)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("LoadCollection returned nil for existing file")
	}

	if !reflect.DeepEqual(got.Vocabulary, want.Vocabulary) {
		t.Errorf("Vocabulary=%v, want %v", got.Vocabulary, want.Vocabulary)
	}
	if !reflect.DeepEqual(got.DF, want.DF) || !reflect.DeepEqual(got.GF, want.GF) {
		t.Errorf("frequencies not round-tripped")
	}
	if !reflect.DeepEqual(got.DocumentIDs, want.DocumentIDs) {
		t.Errorf("DocumentIDs=%v, want %v", got.DocumentIDs, want.DocumentIDs)
	}
	for name, pair := range map[string][2]*mat.Dense{
		"Uk":  {got.Uk, want.Uk},
		"Sk":  {got.Sk, want.Sk},
		"Vtk": {got.Vtk, want.Vtk},
	} {
		if !mat.Equal(pair[0], pair[1]) {
			t.Errorf("%s not round-tripped", name)
		}
	}
}

func TestLoadCollection_Missing(t *testing.T) {
	c, err := LoadCollection(filepath.Join(t.TempDir(), "nope.ls3"))
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if c != nil {
		t.Error("expected nil collection for missing file")
	}
}

func TestLoadCollection_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.ls3")
	if err := os.WriteFile(path, []byte("this is not a collection file"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCollection(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

// A corrupted length prefix must be rejected up front instead of driving a
// huge allocation.
func TestLoadCollection_OversizedStringLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.ls3")
	var buf bytes.Buffer
	for _, u := range []uint32{collectionMagic, collectionVersion, 1, 1, 1} {
		if err := binary.Write(&buf, binary.LittleEndian, u); err != nil {
			t.Fatal(err)
		}
	}
	// First vocabulary entry claims to be ~4 GiB long.
	if err := binary.Write(&buf, binary.LittleEndian, uint32(0xFFFFFFFF)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadCollection(path)
	if err == nil {
		t.Fatal("expected error for oversized string length")
	}
	if !strings.Contains(err.Error(), "not a collection file") {
		t.Errorf("error %q should identify the file as corrupt", err)
	}
}

func TestSaveCollection_RejectsInvalid(t *testing.T) {
	c := sampleCollection()
	c.DF = []float64{1} // dimension mismatch
	err := SaveCollection(filepath.Join(t.TempDir(), "bad.ls3"), c)
	if err == nil {
		t.Error("expected error saving invalid collection")
	}
}

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	total, err := DiskUsageBytes(dir, filepath.Join(dir, "missing"), "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 150 {
		t.Errorf("DiskUsageBytes=%d, want 150", total)
	}
}
