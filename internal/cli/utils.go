// Package cli provides CLI output helpers for LS3.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CarolineDieterich/LS3/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nQuery: %s\n", response.Query)
	fmt.Fprintf(w, "Found %d results in %dms (collection of %d models)\n\n",
		response.Total, response.QueryTime, response.CollectionSize)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f (Similarity: %.4f, Label: %.4f)\n",
		result.Rank, result.Score, result.SimilarityScore, result.LabelScore)
	fmt.Fprintf(w, "ID: %s\n", result.Model.ID)
	if result.Model.Name != "" {
		fmt.Fprintf(w, "Name: %s\n", result.Model.Name)
	}
	if result.Model.Path != "" {
		fmt.Fprintf(w, "Path: %s\n", result.Model.Path)
	}
	if len(result.Model.TermBag) > 0 {
		fmt.Fprintf(w, "Labels: %s\n", Truncate(strings.Join(result.Model.TermBag.SortedTerms(), " "), 120))
	}
	fmt.Fprintln(w)
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
