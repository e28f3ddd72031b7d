// Package fileid derives deterministic model IDs from file paths for
// models discovered on disk.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "model:"

// ModelDocID returns a stable model ID for the given path. The same path
// always yields the same ID, so re-indexing a file updates its model
// instead of creating a duplicate.
func ModelDocID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
