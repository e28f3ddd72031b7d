// Package e2e exercises the full pipeline: PNML files on disk, term
// extraction, collection build, persistence, and query ranking.
package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/CarolineDieterich/LS3/internal/config"
	"github.com/CarolineDieterich/LS3/internal/extract"
	"github.com/CarolineDieterich/LS3/internal/indexer"
	"github.com/CarolineDieterich/LS3/internal/keyword"
	"github.com/CarolineDieterich/LS3/internal/models"
	"github.com/CarolineDieterich/LS3/internal/search"
	"github.com/CarolineDieterich/LS3/internal/storage"
)

type components struct {
	store   storage.Storage
	labels  *keyword.BleveIndex
	engine  *search.Engine
	indexer *indexer.Indexer
	cfg     *config.Config
}

func newComponents(t *testing.T, dir string) *components {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "db.sqlite"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
			CollectionPath: filepath.Join(dir, "collection.bin"),
		},
		Collection: config.CollectionConfig{Extensions: []string{".pnml", ".xml"}},
		Search:     config.SearchConfig{DefaultLimit: 10, MaxLimit: 100, TopKCandidates: 50, LabelNameBoost: 3},
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	labels, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		t.Fatal(err)
	}
	collection, err := storage.LoadCollection(cfg.Storage.CollectionPath)
	if err != nil {
		t.Fatal(err)
	}

	extractor := extract.NewExtractor()
	engine := search.NewEngine(store, labels, extractor, collection, &cfg.Search)
	idx := indexer.NewIndexer(store, labels, extractor, engine, cfg)
	return &components{store: store, labels: labels, engine: engine, indexer: idx, cfg: cfg}
}

func (c *components) close() {
	_ = c.labels.Close()
	_ = c.store.Close()
}

func TestE2E_IndexQueryRank(t *testing.T) {
	dir := t.TempDir()
	modelDir := writeFixtures(t, dir)
	ctx := context.Background()

	c := newComponents(t, dir)
	defer c.close()

	n, err := c.indexer.IndexDirectory(ctx, modelDir, c.cfg.Collection.Extensions)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(fixtureModels) {
		t.Fatalf("indexed %d models, want %d", n, len(fixtureModels))
	}
	if err := c.indexer.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	// Querying with one of the indexed models must rank that model first.
	// The score is not exactly 1: the pseudo-document recovers the model's
	// Vtk column v, but scoring compares v against Sk·v, which only aligns
	// perfectly when the singular values are equal.
	queryPath := filepath.Join(modelDir, "order-fulfillment.pnml")
	resp, err := c.engine.Search(ctx, &models.SearchQuery{ModelPath: queryPath})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != len(fixtureModels) {
		t.Errorf("Total=%d, want %d", resp.Total, len(fixtureModels))
	}
	if resp.Results[0].Model.Name != "order-fulfillment.pnml" {
		t.Fatalf("top result %q, want order-fulfillment.pnml", resp.Results[0].Model.Name)
	}
	if resp.Results[0].SimilarityScore < 0.9 {
		t.Errorf("self-similarity = %g, want close to 1", resp.Results[0].SimilarityScore)
	}
	if len(resp.Results) > 1 && resp.Results[0].SimilarityScore <= resp.Results[1].SimilarityScore {
		t.Errorf("self-similarity %g does not exceed runner-up %g",
			resp.Results[0].SimilarityScore, resp.Results[1].SimilarityScore)
	}

	// The order models share vocabulary, so both should beat the hiring model.
	rank := make(map[string]int, len(resp.Results))
	for _, r := range resp.Results {
		rank[r.Model.Name] = r.Rank
	}
	if rank["order-cancellation.pnml"] >= rank["hiring.pnml"] {
		t.Errorf("order-cancellation ranked %d, hiring %d; expected ordering vocabulary to rank higher",
			rank["order-cancellation.pnml"], rank["hiring.pnml"])
	}
}

func TestE2E_LabelFusionBoostsLabelHits(t *testing.T) {
	dir := t.TempDir()
	modelDir := writeFixtures(t, dir)
	ctx := context.Background()

	c := newComponents(t, dir)
	defer c.close()

	if _, err := c.indexer.IndexDirectory(ctx, modelDir, c.cfg.Collection.Extensions); err != nil {
		t.Fatal(err)
	}
	if err := c.indexer.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	resp, err := c.engine.Search(ctx, &models.SearchQuery{
		ModelPath:        filepath.Join(modelDir, "hiring.pnml"),
		Label:            "invoice",
		SimilarityWeight: 0.3,
		LabelWeight:      0.7,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Results[0].Model.Name != "invoicing.pnml" {
		t.Errorf("top result %q, want invoicing.pnml when the label query dominates", resp.Results[0].Model.Name)
	}
	if resp.Results[0].LabelScore != 1.0 {
		t.Errorf("top label score = %g, want 1.0", resp.Results[0].LabelScore)
	}
}

func TestE2E_CollectionSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	modelDir := writeFixtures(t, dir)
	ctx := context.Background()

	c := newComponents(t, dir)
	if _, err := c.indexer.IndexDirectory(ctx, modelDir, c.cfg.Collection.Extensions); err != nil {
		t.Fatal(err)
	}
	if err := c.indexer.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}
	wantRank := c.engine.Collection().Rank()
	c.close()

	// Fresh components pick up the persisted collection without a rebuild.
	c2 := newComponents(t, dir)
	defer c2.close()
	loaded := c2.engine.Collection()
	if loaded == nil {
		t.Fatal("collection should load from disk after restart")
	}
	if loaded.DocumentCount() != len(fixtureModels) || loaded.Rank() != wantRank {
		t.Errorf("loaded collection: %d models rank %d, want %d models rank %d",
			loaded.DocumentCount(), loaded.Rank(), len(fixtureModels), wantRank)
	}

	resp, err := c2.engine.Search(ctx, &models.SearchQuery{
		ModelPath: filepath.Join(modelDir, "invoicing.pnml"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Results[0].Model.Name != "invoicing.pnml" {
		t.Errorf("top result after restart %q, want invoicing.pnml", resp.Results[0].Model.Name)
	}
}

func TestE2E_UnchangedFilesSkipOnReindex(t *testing.T) {
	dir := t.TempDir()
	modelDir := writeFixtures(t, dir)
	ctx := context.Background()

	c := newComponents(t, dir)
	defer c.close()

	if _, err := c.indexer.IndexDirectory(ctx, modelDir, c.cfg.Collection.Extensions); err != nil {
		t.Fatal(err)
	}
	first, err := c.store.ListModels(ctx, 0, -1)
	if err != nil {
		t.Fatal(err)
	}

	// A second pass over the same files must not re-store anything.
	if _, err := c.indexer.IndexDirectory(ctx, modelDir, c.cfg.Collection.Extensions); err != nil {
		t.Fatal(err)
	}
	second, err := c.store.ListModels(ctx, 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("model count changed on re-index: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !second[i].CreatedAt.Equal(first[i].CreatedAt) {
			t.Errorf("model %s re-stored on unchanged re-index", first[i].ID)
		}
	}
}
