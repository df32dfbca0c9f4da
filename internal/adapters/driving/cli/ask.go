package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siemdocs/docqa/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and get a cited answer",
	Long: `Retrieves relevant documentation passages and generates an answer
with inline citations. Requires a configured LLM provider.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&searchVendor, "vendor", "", "restrict to a vendor")
	askCmd.Flags().StringVar(&searchProduct, "product", "", "restrict to a product")
	askCmd.Flags().StringVar(&searchTechnique, "technique", "", "restrict to a MITRE technique")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	application, err := buildApp(flagConfig)
	if err != nil {
		return err
	}
	defer application.Close()

	if application.Answer == nil {
		return errors.New("no LLM provider configured; set [llm] in the config file or DOCQA_ANTHROPIC_API_KEY")
	}

	answer, err := application.Answer.Answer(cmd.Context(), args[0], domain.RetrieveOptions{
		Filters: searchFilters(),
	})
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(answer.Text)
	if len(answer.Context.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, citation := range answer.Context.Citations {
			source := citation.SourcePath
			if citation.Title != "" {
				source = citation.Title + " (" + citation.SourcePath + ")"
			}
			cmd.Printf("  [%d] %s\n", citation.Marker, source)
		}
	}
	return nil
}
