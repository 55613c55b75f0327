package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/gendataset/internal/parse"
)

var parseStrict bool

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Decode a saved reply into content and summary",
	Long: `Decode a reply as generate would, without calling any service.

Useful for checking how a model's output will land in the dataset.
Pass "-" to read the reply from stdin.

Example:
  gendataset parse reply.txt
  pbpaste | gendataset parse - --strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}

		mode := parse.ModeLenient
		if parseStrict {
			mode = parse.ModeStrict
		}

		pair, err := parse.Parser{Mode: mode}.Parse(string(data))
		if err != nil {
			return fmt.Errorf("parse reply: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "content: %s\n", pair.Content)
		fmt.Fprintf(out, "summary: %s\n", pair.Summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "fail when the reply does not follow the content/summary format")
}
