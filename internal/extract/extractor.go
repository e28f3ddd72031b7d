// Package extract provides structural term extraction from process model files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CarolineDieterich/LS3/internal/terms"
)

// Extractor extracts a term bag from process model files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the model at path and returns its term bag. Extraction either
// yields a bag or an error; a malformed or empty model is never silently
// turned into an empty bag.
func (e *Extractor) Extract(path string) (terms.Bag, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts a term bag from content based on the given extension.
// ext should include the leading dot (e.g. ".pnml").
func (e *Extractor) ExtractBytes(content []byte, ext string) (terms.Bag, error) {
	switch ext {
	case ".pnml", ".xml":
		return extractPNML(content)
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
}
