// Package main is the LS3 CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/CarolineDieterich/LS3/internal/cli"
	"github.com/CarolineDieterich/LS3/internal/config"
	"github.com/CarolineDieterich/LS3/internal/extract"
	"github.com/CarolineDieterich/LS3/internal/fileid"
	"github.com/CarolineDieterich/LS3/internal/indexer"
	"github.com/CarolineDieterich/LS3/internal/keyword"
	"github.com/CarolineDieterich/LS3/internal/models"
	"github.com/CarolineDieterich/LS3/internal/search"
	"github.com/CarolineDieterich/LS3/internal/server"
	"github.com/CarolineDieterich/LS3/internal/storage"
	"github.com/CarolineDieterich/LS3/internal/watcher"
	"github.com/CarolineDieterich/LS3/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ls3/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "ls3 server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "index":
		runIndex()
	case "delete":
		runDelete()
	case "rebuild":
		runRebuild()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("ls3 version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, model indexing, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	idx := components.Indexer
	exts := cfg.Collection.Extensions
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if err := idx.IndexFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch index file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := idx.DeleteModel(context.Background(), fileid.ModelDocID(path)); err != nil {
				logger.Warn("watch delete by path failed", zap.String("path", path), zap.Error(err))
			}
		},
		func() {
			if err := idx.Rebuild(context.Background()); err != nil {
				logger.Warn("watch collection rebuild failed", zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.Storage,
		watchSvc,
		cfg,
		resolvedConfigPath,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printQueryUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: ls3 query [flags] <model-file>\n\n")
	fmt.Fprintf(fs.Output(), "Scores the given process model against every indexed model.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Similarity scores are in [0,1]: 1 means identical term usage, 0.5 means
unrelated vocabulary.
  • Use --label to mix in a label keyword search (--label-weight controls the blend).
  • Use --fuzzy with --label to tolerate typos in the label query.
  • Use --min-score to drop low-similarity models; --limit controls how many results.

Examples:
  ls3 query order-process.pnml
  ls3 query --limit 20 --min-score 0.6 order-process.pnml
  ls3 query --label invoice --label-weight 0.3 order-process.pnml
  ls3 query --output json order-process.pnml   # parseable output
`)
}

// queryArgsReorder moves any flags (and their values) that appear after the
// model path to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument, so
// "ls3 query model.pnml -limit 5" would otherwise leave -limit unparsed.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runQuery() {
	queryArgs := queryArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 10, "number of results")
	minScore := fs.Float64("min-score", 0, "minimum fused score; 0 keeps everything")
	label := fs.String("label", "", "label keyword query to blend into the ranking")
	labelWeight := fs.Float64("label-weight", 0, "weight of the label score (0..1); requires --label")
	similarityWeight := fs.Float64("similarity-weight", 0, "weight of the similarity score; defaults to 1-label-weight")
	fuzzy := fs.Bool("fuzzy", false, "tolerate typos in the label query")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printQueryUsage(fs) }
	_ = fs.Parse(queryArgs)

	if fs.NArg() < 1 {
		printQueryUsage(fs)
		os.Exit(1)
	}
	modelPath, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid model path: %v\n", err)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	simWeight := *similarityWeight
	if simWeight == 0 && *labelWeight > 0 {
		simWeight = 1 - *labelWeight
	}
	searchQuery := &models.SearchQuery{
		ModelPath:        modelPath,
		Label:            *label,
		Limit:            *limit,
		MinScore:         *minScore,
		SimilarityWeight: simWeight,
		LabelWeight:      *labelWeight,
		FuzzyEnabled:     *fuzzy,
	}

	if *serverURL != "" {
		// Send the model content inline so the server does not need access
		// to the client's filesystem (also avoids Bleve/SQLite lock conflict).
		content, err := os.ReadFile(modelPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read model file: %v\n", err)
			os.Exit(1)
		}
		searchQuery.ModelPath = ""
		searchQuery.PNML = string(content)
		response, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		response.Query = modelPath
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Engine.Search(context.Background(), searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// statusCollectionResponse holds collection info returned by status.
type statusCollectionResponse struct {
	Built  bool `json:"built"`
	Models int  `json:"models,omitempty"`
	Terms  int  `json:"terms,omitempty"`
	Rank   int  `json:"rank,omitempty"`
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	Rank           int      `json:"rank,omitempty"`
	Extensions     []string `json:"extensions,omitempty"`
	DatabasePath   string   `json:"database_path,omitempty"`
	CollectionPath string   `json:"collection_path,omitempty"`
	BleveIndexPath string   `json:"bleve_index_path,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Models         int64                     `json:"models"`
	Collection     *statusCollectionResponse `json:"collection,omitempty"`
	DiskUsageBytes *int64                    `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse     `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		modelCount, err := components.Storage.CountModels(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count models failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Models:     modelCount,
			Collection: &statusCollectionResponse{},
			Config: &statusConfigResponse{
				Rank:           cfg.Collection.Rank,
				Extensions:     cfg.Collection.Extensions,
				DatabasePath:   cfg.Storage.DatabasePath,
				CollectionPath: cfg.Storage.CollectionPath,
				BleveIndexPath: cfg.Storage.BleveIndexPath,
			},
		}
		if c := components.Engine.Collection(); c != nil {
			status.Collection = &statusCollectionResponse{
				Built:  true,
				Models: c.DocumentCount(),
				Terms:  c.TermCount(),
				Rank:   c.Rank(),
			}
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath, cfg.Storage.CollectionPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("models:             %d   # count of indexed process models\n", status.Models)
		if status.Collection != nil {
			fmt.Printf("collection_built:   %t\n", status.Collection.Built)
			if status.Collection.Built {
				fmt.Printf("collection_models:  %d\n", status.Collection.Models)
				fmt.Printf("collection_terms:   %d\n", status.Collection.Terms)
				fmt.Printf("collection_rank:    %d\n", status.Collection.Rank)
			}
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d   # storage + indices on disk\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			if status.Config.Rank > 0 {
				fmt.Printf("rank:               %d\n", status.Config.Rank)
			}
			if len(status.Config.Extensions) > 0 {
				fmt.Printf("extensions:         %v\n", status.Config.Extensions)
			}
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:      %s\n", status.Config.DatabasePath)
			}
			if status.Config.CollectionPath != "" {
				fmt.Printf("collection_path:    %s\n", status.Config.CollectionPath)
			}
			if status.Config.BleveIndexPath != "" {
				fmt.Printf("bleve_index_path:   %s\n", status.Config.BleveIndexPath)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	noRebuild := fs.Bool("no-rebuild", false, "skip the collection rebuild after indexing")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: ls3 index [flags] <model-file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		exts := cfg.Collection.Extensions
		if exts == nil {
			exts = []string{".pnml", ".xml"}
		}
		n, err := components.Indexer.IndexDirectory(ctx, path, exts)
		if err != nil {
			fmt.Printf("Indexing directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d model(s) from %s\n", n, path)
	} else {
		// Single file: no extension filter
		if err := components.Indexer.IndexFile(ctx, path, nil); err != nil {
			fmt.Printf("Indexing failed: %v\n", err)
			os.Exit(1)
		}
		absPath, _ := filepath.Abs(path)
		fmt.Printf("Model indexed: %s\n", fileid.ModelDocID(absPath))
	}
	if !*noRebuild {
		if err := components.Indexer.Rebuild(ctx); err != nil {
			fmt.Printf("Collection rebuild failed: %v\n", err)
			os.Exit(1)
		}
		if c := components.Engine.Collection(); c != nil {
			fmt.Printf("Collection rebuilt: %d models, %d terms, rank %d\n",
				c.DocumentCount(), c.TermCount(), c.Rank())
		} else {
			fmt.Println("Collection not built (need at least two indexed models)")
		}
	}
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	if err := components.Indexer.Rebuild(context.Background()); err != nil {
		fmt.Printf("Collection rebuild failed: %v\n", err)
		os.Exit(1)
	}
	if c := components.Engine.Collection(); c != nil {
		fmt.Printf("Collection rebuilt: %d models, %d terms, rank %d\n",
			c.DocumentCount(), c.TermCount(), c.Rank())
	} else {
		fmt.Println("Collection not built (need at least two indexed models)")
	}
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ls3 watch <add|remove|list> [path]")
		fmt.Println("  ls3 watch add <path>     Add directory to watch")
		fmt.Println("  ls3 watch remove <path>  Remove directory from watch")
		fmt.Println("  ls3 watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: ls3 watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: ls3 watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	noRebuild := fs.Bool("no-rebuild", false, "skip the collection rebuild after deleting")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: ls3 delete [flags] <model-id>")
		os.Exit(1)
	}
	modelID := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if err := components.Indexer.DeleteModel(ctx, modelID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	if !*noRebuild {
		if err := components.Indexer.Rebuild(ctx); err != nil {
			fmt.Printf("Collection rebuild failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Model deleted: %s\n", modelID)
}

// Components holds initialized services.
type Components struct {
	Storage    storage.Storage
	LabelIndex keyword.LabelIndex
	Engine     *search.Engine
	Indexer    *indexer.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.LabelIndex != nil {
		_ = c.LabelIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	labelIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize label index: %w", err)
	}

	// A previously built collection is loaded so queries work without a
	// rebuild; missing file just means nothing has been indexed yet.
	collection, err := storage.LoadCollection(cfg.Storage.CollectionPath)
	if err != nil {
		logger.Warn("failed to load collection, a rebuild is needed",
			zap.String("path", cfg.Storage.CollectionPath), zap.Error(err))
		collection = nil
	} else if collection != nil {
		logger.Info("collection loaded",
			zap.Int("models", collection.DocumentCount()),
			zap.Int("terms", collection.TermCount()),
			zap.Int("rank", collection.Rank()))
	}

	extractor := extract.NewExtractor()
	engine := search.NewEngine(store, labelIndex, extractor, collection, &cfg.Search)

	idxOpts := []indexer.IndexerOption{}
	if debug && logger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, labelIndex, extractor, engine, cfg, idxOpts...)

	return &Components{
		Storage:    store,
		LabelIndex: labelIndex,
		Engine:     engine,
		Indexer:    idx,
	}, nil
}

func printUsage() {
	fmt.Println(`ls3 - Latent semantic similarity search for process models

Usage:
  ls3 server [flags]              Start the HTTP server
  ls3 query [flags] <model-file>  Score a model against the indexed collection
  ls3 index [flags] <path>        Index a model file or directory
  ls3 delete [flags] <id>         Delete a model
  ls3 rebuild [flags]             Rebuild the collection from stored models
  ls3 status [flags]              Show model/collection/storage status
  ls3 watch <add|remove|list>     Manage watched model directories
  ls3 version                     Show version
  ls3 help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ls3/config.yaml)
  --debug            Enable debug logging (directory changes, model indexing, etc.)

Query Flags:
  --config string             Config file path (for direct storage mode)
  --server string             Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int                 Number of results (default: 10)
  --min-score float           Minimum fused score (default: 0, keep everything)
  --label string              Label keyword query to blend into the ranking
  --label-weight float        Weight of the label score (requires --label)
  --similarity-weight float   Weight of the similarity score (default: 1-label-weight)
  --fuzzy                     Tolerate typos in the label query
  --output string             Output format: text or json (default: text)

Index Flags:
  --config string    Config file path
  --no-rebuild       Skip the collection rebuild after indexing

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  ls3 server
  ls3 index ./models
  ls3 query order-process.pnml
  ls3 query --label invoice --label-weight 0.3 order-process.pnml
  ls3 delete model:3f6c...
  ls3 status --output json
  ls3 watch add /path/to/models`)
}
