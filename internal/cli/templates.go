package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/gendataset/internal/expand"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates [content]",
	Short: "List the question templates",
	Long: `List the configured question templates in row order.

With a content argument, print the questions that content would expand to.

Example:
  gendataset templates
  gendataset templates 师卦`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		expander, err := expand.New(cfg.Templates)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, tmpl := range expander.Templates() {
			line := tmpl
			if len(args) == 1 {
				line = expander.Question(i, args[0])
			}
			fmt.Fprintf(out, "%2d. %s\n", i+1, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
