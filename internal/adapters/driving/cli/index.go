package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siemdocs/docqa/internal/ingest"
)

var (
	indexFragmentSize int
	indexOverlap      int
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index a directory of documentation",
	Long: `Loads markdown and plain-text files from a directory, splits them
into fragments, embeds them, and writes them to the search indexes.

Files may start with a +++ delimited TOML front-matter block:

  +++
  title = "Windows Security Event Log"
  vendor = "Microsoft"
  product = "Windows"
  document_type = "data_source"
  techniques = ["T1110", "T1078.002"]
  +++`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().IntVar(&indexFragmentSize, "fragment-size", 0, "target fragment size in characters")
	indexCmd.Flags().IntVar(&indexOverlap, "overlap", -1, "overlap between fragments in characters")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	application, err := buildApp(flagConfig)
	if err != nil {
		return err
	}
	defer application.Close()

	var opts []ingest.Option
	if indexFragmentSize > 0 {
		opts = append(opts, ingest.WithFragmentSize(indexFragmentSize))
	}
	if indexOverlap >= 0 {
		opts = append(opts, ingest.WithOverlap(indexOverlap))
	}

	loader := ingest.NewLoader(opts...)
	fragments, err := loader.LoadDir(args[0])
	if err != nil {
		return fmt.Errorf("loading documentation: %w", err)
	}
	if len(fragments) == 0 {
		cmd.Println("No documentation files found.")
		return nil
	}

	indexed, err := application.Indexer().IndexAll(cmd.Context(), fragments)
	if err != nil {
		return fmt.Errorf("indexing failed after %d fragments: %w", indexed, err)
	}

	cmd.Printf("Indexed %d fragments from %s\n", indexed, args[0])
	return nil
}
