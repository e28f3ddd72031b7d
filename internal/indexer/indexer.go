// Package indexer registers process models in storage and the label index
// and rebuilds the LSA collection from the stored models.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CarolineDieterich/LS3/internal/collection"
	"github.com/CarolineDieterich/LS3/internal/config"
	"github.com/CarolineDieterich/LS3/internal/extract"
	"github.com/CarolineDieterich/LS3/internal/fileid"
	"github.com/CarolineDieterich/LS3/internal/keyword"
	"github.com/CarolineDieterich/LS3/internal/models"
	"github.com/CarolineDieterich/LS3/internal/search"
	"github.com/CarolineDieterich/LS3/internal/storage"
	"github.com/CarolineDieterich/LS3/internal/terms"
)

// Indexer registers models into storage and the label index. Registered
// models take part in similarity search only after Rebuild has folded them
// into a new collection.
type Indexer struct {
	storage        storage.Storage
	labelIndex     keyword.LabelIndex
	extractor      *extract.Extractor
	engine         *search.Engine
	rank           int
	collectionPath string
	logger         *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (model indexed, collection rebuilt, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies. engine may be
// nil when no search engine needs to pick up rebuilt collections (the index
// CLI subcommand works this way).
func NewIndexer(
	store storage.Storage,
	labelIndex keyword.LabelIndex,
	extractor *extract.Extractor,
	engine *search.Engine,
	cfg *config.Config,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		storage:        store,
		labelIndex:     labelIndex,
		extractor:      extractor,
		engine:         engine,
		rank:           cfg.Collection.Rank,
		collectionPath: cfg.Storage.CollectionPath,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexModel extracts the term bag from the input's PNML content or file
// and stores the model. An existing model with the same ID is replaced.
// The model joins similarity search on the next Rebuild.
func (idx *Indexer) IndexModel(ctx context.Context, input *models.ModelInput) (*models.ProcessModel, error) {
	if input.Path == "" && input.PNML == "" {
		return nil, fmt.Errorf("model input needs a path or pnml content")
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}

	var bag terms.Bag
	var err error
	if input.PNML != "" {
		bag, err = idx.extractor.ExtractBytes([]byte(input.PNML), ".pnml")
	} else {
		bag, err = idx.extractor.Extract(input.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract terms: %w", err)
	}

	model := &models.ProcessModel{
		ID:       input.ID,
		Name:     modelName(input),
		Path:     input.Path,
		TermBag:  bag,
		Metadata: input.Metadata,
	}
	_ = idx.DeleteModel(ctx, model.ID)
	if err := idx.storage.CreateModel(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to store model: %w", err)
	}
	if err := idx.labelIndex.Index(ctx, model.ID, model); err != nil {
		return nil, fmt.Errorf("failed to index labels: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer model stored", zap.String("id", model.ID), zap.String("name", model.Name))
	}
	return model, nil
}

func modelName(input *models.ModelInput) string {
	if input.Name != "" {
		return input.Name
	}
	if input.Path != "" {
		return filepath.Base(input.Path)
	}
	return input.ID
}

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// IndexFile reads a model file from path and indexes it. The model ID is
// derived from the absolute path so re-indexing updates the same model. If
// allowedExts is non-empty, the file's extension must be in the list
// (case-insensitive). Skips extraction when the file is already indexed with
// the same mtime and size.
func (idx *Indexer) IndexFile(ctx context.Context, path string, allowedExts []string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}
	modelID := fileid.ModelDocID(absPath)
	if idx.isUnchanged(ctx, absPath, modelID, info) {
		// Ensure the model is in the label index (repopulates if Bleve was opened empty).
		if model, getErr := idx.storage.GetModel(ctx, modelID); getErr == nil {
			_ = idx.labelIndex.Index(ctx, modelID, model)
		}
		if idx.logger != nil {
			idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		}
		return nil
	}
	input := &models.ModelInput{
		ID:   modelID,
		Name: filepath.Base(absPath),
		Path: absPath,
		Metadata: map[string]interface{}{
			metaKeySourcePath:  absPath,
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	}
	if _, err := idx.IndexModel(ctx, input); err != nil {
		return err
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer file indexed", zap.String("path", absPath), zap.String("model_id", modelID))
	}
	return nil
}

// isUnchanged reports whether the file is already indexed with the same
// mtime and size.
func (idx *Indexer) isUnchanged(ctx context.Context, absPath, modelID string, info os.FileInfo) bool {
	model, err := idx.storage.GetModel(ctx, modelID)
	if err != nil || model.Metadata == nil {
		return false
	}
	if model.Metadata[metaKeySourcePath] != absPath {
		return false
	}
	// Values are stored as strings to avoid JSON float64 precision loss (UnixNano exceeds 53 bits).
	return metadataInt64(model.Metadata, metaKeySourceMtime) == info.ModTime().UnixNano() &&
		metadataInt64(model.Metadata, metaKeySourceSize) == info.Size()
}

func metadataInt64(m map[string]interface{}, key string) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// IndexDirectory walks dir recursively and indexes each regular file whose
// extension is in allowedExts (if non-empty; otherwise all files). Returns
// the number of files indexed and the first error encountered, if any.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so we only index regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil {
			return nil
		}
		if !finfo.Mode().IsRegular() {
			return nil
		}
		if indexErr := idx.IndexFile(ctx, path, allowedExts); indexErr != nil {
			return indexErr
		}
		n++
		return nil
	})
	return n, err
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

// DeleteModel removes a model from the label index and storage. The model
// still contributes to similarity scores until the next Rebuild.
func (idx *Indexer) DeleteModel(ctx context.Context, id string) error {
	if err := idx.labelIndex.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from label index: %w", err)
	}
	if err := idx.storage.DeleteModel(ctx, id); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer model deleted", zap.String("id", id))
	}
	return nil
}

// Rebuild recomputes the LSA collection from every stored model, persists
// it, and swaps it into the search engine. With fewer than two models no
// collection can be built and the engine is left without one.
func (idx *Indexer) Rebuild(ctx context.Context) error {
	stored, err := idx.storage.ListModels(ctx, 0, -1)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if len(stored) < 2 {
		if idx.engine != nil {
			idx.engine.SetCollection(nil)
		}
		if idx.logger != nil {
			idx.logger.Debug("indexer rebuild skipped, not enough models", zap.Int("count", len(stored)))
		}
		return nil
	}

	docs := make([]collection.Document, len(stored))
	for i, model := range stored {
		docs[i] = collection.Document{ID: model.ID, Bag: model.TermBag}
	}
	c, err := collection.Build(docs, idx.rank)
	if err != nil {
		return fmt.Errorf("build collection: %w", err)
	}
	if idx.collectionPath != "" {
		if err := storage.SaveCollection(idx.collectionPath, c); err != nil {
			return fmt.Errorf("save collection: %w", err)
		}
	}
	if idx.engine != nil {
		idx.engine.SetCollection(c)
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer collection rebuilt",
			zap.Int("models", c.DocumentCount()),
			zap.Int("terms", c.TermCount()),
			zap.Int("rank", c.Rank()))
	}
	return nil
}
