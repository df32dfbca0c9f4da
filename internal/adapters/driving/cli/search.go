package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siemdocs/docqa/internal/core/domain"
)

var (
	searchLimit     int
	searchJSON      bool
	searchVendor    string
	searchProduct   string
	searchDocType   string
	searchTechnique string
)

// snippetLength bounds the text excerpt shown per result.
const snippetLength = 200

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documentation",
	Long: `Performs hybrid search across the indexed documentation.
Combines keyword (BM25) and semantic (vector) search, reranks the
results, and applies per-source diversity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchVendor, "vendor", "", "restrict to a vendor")
	searchCmd.Flags().StringVar(&searchProduct, "product", "", "restrict to a product")
	searchCmd.Flags().StringVar(&searchDocType, "type", "", "restrict to a document type (overview, use_case, data_source, parser, rule)")
	searchCmd.Flags().StringVar(&searchTechnique, "technique", "", "restrict to a MITRE technique (e.g. T1110)")
	rootCmd.AddCommand(searchCmd)
}

func searchFilters() domain.Filters {
	return domain.Filters{
		Vendor:       searchVendor,
		Product:      searchProduct,
		DocumentType: domain.DocumentType(strings.ToLower(searchDocType)),
		Technique:    searchTechnique,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	application, err := buildApp(flagConfig)
	if err != nil {
		return err
	}
	defer application.Close()

	block, err := application.Retrieval.Retrieve(cmd.Context(), args[0], domain.RetrieveOptions{
		Filters: searchFilters(),
		TopK:    searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, block)
	}
	return outputSearchText(cmd, args[0], block)
}

func outputSearchJSON(cmd *cobra.Command, block domain.ContextBlock) error {
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, query string, block domain.ContextBlock) error {
	if block.IsEmpty() {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, scored := range block.Fragments {
		citation := block.Citations[i]
		title := citation.Title
		if title == "" {
			title = citation.SourcePath
		}

		cmd.Printf("  [%d] %s (%.2f)\n", citation.Marker, title, scored.OrderingScore())
		if citation.Vendor != "" || citation.Product != "" {
			cmd.Printf("      %s %s - %s\n", citation.Vendor, citation.Product, citation.SourcePath)
		} else {
			cmd.Printf("      %s\n", citation.SourcePath)
		}
		if snippet := makeSnippet(scored.Fragment.Text, query); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	if block.Truncated {
		cmd.Println("(some results were dropped to fit the context budget)")
	}
	return nil
}

// makeSnippet returns a short excerpt around the first query term match,
// or the fragment's opening when nothing matches.
func makeSnippet(text, query string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return ""
	}

	at := -1
	lower := strings.ToLower(flat)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if idx := strings.Index(lower, term); idx >= 0 && (at < 0 || idx < at) {
			at = idx
		}
	}

	start := 0
	if at > snippetLength/2 {
		start = at - snippetLength/2
	}
	end := start + snippetLength
	if end >= len(flat) {
		end = len(flat)
	}

	snippet := flat[start:end]
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(flat) {
		snippet += "…"
	}
	return snippet
}
