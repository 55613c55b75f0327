package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/gendataset/internal/journal"
)

var (
	journalDB    string
	journalLimit int
)

// journalCmd represents the journal command
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the generation journal",
	Long: `Inspect the SQLite journal written by generate --journal.

The journal holds one entry per service call: latency, outcome and the
decoded content/summary pair.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent journal entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := journalPath()
		if err != nil {
			return err
		}

		j, err := journal.Open(path)
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.List(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "No entries in %s\n", path)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tRUN\tSEQ\tPROVIDER\tLATENCY\tROWS\tRESULT")
		for _, e := range entries {
			result := e.Content
			if !e.Success {
				result = "error: " + e.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
				e.CreatedAt.Local().Format(time.DateTime),
				shortID(e.RunID),
				e.Seq,
				e.Provider,
				e.Latency,
				e.Rows,
				result,
			)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)

	journalListCmd.Flags().StringVar(&journalDB, "db", "", "journal database (default: journal.path or $XDG_DATA_HOME/gendataset/journal.db)")
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "max entries to show (0 = all)")
}

// journalPath resolves --db, then journal.path, then the default location
func journalPath() (string, error) {
	if journalDB != "" {
		return journalDB, nil
	}
	if path := viper.GetString("journal.path"); path != "" {
		return path, nil
	}
	return journal.DefaultPath()
}

// shortID keeps the first uuid group
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
