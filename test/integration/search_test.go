// Package integration tests the HTTP API against a real storage and index
// stack (SQLite, Bleve, persisted collection).
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/CarolineDieterich/LS3/internal/config"
	"github.com/CarolineDieterich/LS3/internal/extract"
	"github.com/CarolineDieterich/LS3/internal/indexer"
	"github.com/CarolineDieterich/LS3/internal/keyword"
	"github.com/CarolineDieterich/LS3/internal/search"
	"github.com/CarolineDieterich/LS3/internal/server"
	"github.com/CarolineDieterich/LS3/internal/storage"
)

func pnmlNet(labels ...string) string {
	doc := "<pnml><net id=\"n1\">"
	for i, label := range labels {
		doc += fmt.Sprintf("<transition id=\"t%d\"><name><text>%s</text></name></transition>", i, label)
	}
	return doc + "</net></pnml>"
}

func TestIntegration_HTTPIndexAndQuery(t *testing.T) {
	dir := t.TempDir()
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
	defer store.Close()
	labels, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer labels.Close()

	extractor := extract.NewExtractor()
	engine := search.NewEngine(store, labels, extractor, nil, &cfg.Search)
	idx := indexer.NewIndexer(store, labels, extractor, engine, cfg)
	srv := server.NewServer(engine, idx, store, nil, cfg, "", zap.NewNop())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for id, labelSet := range map[string][]string{
		"order":    {"Receive order", "Check order", "Ship order"},
		"invoice":  {"Create invoice", "Send invoice"},
		"incident": {"Classify incident", "Resolve incident"},
	} {
		body, _ := json.Marshal(map[string]string{"id": id, "name": id, "pnml": pnmlNet(labelSet...)})
		resp, err := http.Post(ts.URL+"/api/v1/models", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("index %s: status %d", id, resp.StatusCode)
		}
		resp.Body.Close()
	}

	body, _ := json.Marshal(map[string]string{"pnml": pnmlNet("Receive order", "Check order", "Ship order")})
	resp, err := http.Post(ts.URL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	var out struct {
		Results []struct {
			Model struct {
				ID string `json:"id"`
			} `json:"model"`
			SimilarityScore float64 `json:"similarity_score"`
		} `json:"results"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 3 {
		t.Errorf("total=%d, want 3", out.Total)
	}
	if len(out.Results) == 0 || out.Results[0].Model.ID != "order" {
		t.Fatalf("expected order as top result, got %+v", out.Results)
	}
	if out.Results[0].SimilarityScore < 0.9 {
		t.Errorf("self-similarity = %g, want close to 1", out.Results[0].SimilarityScore)
	}

	// The rebuilds triggered by indexing persisted the collection.
	c, err := storage.LoadCollection(cfg.Storage.CollectionPath)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.DocumentCount() != 3 {
		t.Error("expected persisted collection with 3 models")
	}
}
