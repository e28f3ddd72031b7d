// Package storage provides the binary on-disk codec for the LSA collection.
package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/CarolineDieterich/LS3/internal/lsa"
	"gonum.org/v1/gonum/mat"
)

// Collection file layout (little-endian): magic, version, then vocabulary
// size V, document count D, rank K, followed by V terms (u32 length + bytes),
// V df float64s, V gf float64s, D document IDs (u32 length + bytes), and the
// raw row-major float64 data of Uk (V*K), Sk (K*K), Vtk (K*D).
const (
	collectionMagic   = uint32(0x4C533343) // "LS3C"
	collectionVersion = uint32(1)
)

// SaveCollection writes the collection to path. The directory is created if
// needed and the file is written atomically via a temp file rename.
func SaveCollection(path string, c *lsa.Collection) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid collection: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".collection-*")
	if err != nil {
		return fmt.Errorf("create collection file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := writeCollection(w, c); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close collection file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadCollection reads a collection from path and validates it. A missing
// file yields (nil, nil) so callers can distinguish "not built yet" from a
// corrupted file.
func LoadCollection(path string) (*lsa.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()

	c, err := readCollection(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("loaded collection is inconsistent: %w", err)
	}
	return c, nil
}

func writeCollection(w io.Writer, c *lsa.Collection) error {
	v := uint32(c.TermCount())
	d := uint32(c.DocumentCount())
	k := uint32(c.Rank())
	for _, u := range []uint32{collectionMagic, collectionVersion, v, d, k} {
		if err := binary.Write(w, binary.LittleEndian, u); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, term := range c.Vocabulary {
		if err := writeString(w, term); err != nil {
			return fmt.Errorf("write vocabulary: %w", err)
		}
	}
	if err := writeFloats(w, c.DF); err != nil {
		return fmt.Errorf("write df: %w", err)
	}
	if err := writeFloats(w, c.GF); err != nil {
		return fmt.Errorf("write gf: %w", err)
	}
	for _, id := range c.DocumentIDs {
		if err := writeString(w, id); err != nil {
			return fmt.Errorf("write document ids: %w", err)
		}
	}
	for _, m := range []*mat.Dense{c.Uk, c.Sk, c.Vtk} {
		if err := writeFloats(w, m.RawMatrix().Data); err != nil {
			return fmt.Errorf("write factors: %w", err)
		}
	}
	return nil
}

func readCollection(r io.Reader) (*lsa.Collection, error) {
	var magic, version, v, d, k uint32
	for _, p := range []*uint32{&magic, &version, &v, &d, &k} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if magic != collectionMagic {
		return nil, fmt.Errorf("not a collection file (bad magic 0x%08x)", magic)
	}
	if version != collectionVersion {
		return nil, fmt.Errorf("unsupported collection version %d", version)
	}

	c := &lsa.Collection{
		Vocabulary:  make([]string, v),
		DocumentIDs: make([]string, d),
	}
	for i := range c.Vocabulary {
		s, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read vocabulary: %w", err)
		}
		c.Vocabulary[i] = s
	}
	var err error
	if c.DF, err = readFloats(r, int(v)); err != nil {
		return nil, fmt.Errorf("read df: %w", err)
	}
	if c.GF, err = readFloats(r, int(v)); err != nil {
		return nil, fmt.Errorf("read gf: %w", err)
	}
	for i := range c.DocumentIDs {
		s, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read document ids: %w", err)
		}
		c.DocumentIDs[i] = s
	}
	ukData, err := readFloats(r, int(v*k))
	if err != nil {
		return nil, fmt.Errorf("read Uk: %w", err)
	}
	skData, err := readFloats(r, int(k*k))
	if err != nil {
		return nil, fmt.Errorf("read Sk: %w", err)
	}
	vtkData, err := readFloats(r, int(k*d))
	if err != nil {
		return nil, fmt.Errorf("read Vtk: %w", err)
	}
	c.Uk = mat.NewDense(int(v), int(k), ukData)
	c.Sk = mat.NewDense(int(k), int(k), skData)
	c.Vtk = mat.NewDense(int(k), int(d), vtkData)
	return c, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// maxStringLen bounds length prefixes read from disk so a corrupted file
// cannot trigger a multi-gigabyte allocation. Terms and document IDs are
// far shorter in practice.
const maxStringLen = 1 << 16

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", fmt.Errorf("not a collection file (string length %d exceeds %d)", n, maxStringLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeFloats(w io.Writer, values []float64) error {
	const size = 8
	buf := make([]byte, len(values)*size)
	for i, f := range values {
		binary.LittleEndian.PutUint64(buf[i*size:(i+1)*size], math.Float64bits(f))
	}
	_, err := w.Write(buf)
	return err
}

func readFloats(r io.Reader, n int) ([]float64, error) {
	const size = 8
	buf := make([]byte, n*size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*size : (i+1)*size]))
	}
	return out, nil
}
