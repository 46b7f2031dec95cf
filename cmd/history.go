package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mendtool/mend/internal/console"
	"github.com/mendtool/mend/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded change batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		console.ConfigureColor(cfg.Color)
		printer := console.NewPrinter(os.Stdout)

		journal, err := history.Open(cmd.Context(), cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer journal.Close()

		batches, err := journal.ListBatches(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			printer.Infof("No recorded batches")
			return nil
		}
		for _, b := range batches {
			fmt.Printf("%s  %s  %d files  %d directives\n",
				b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.Files, b.Directives)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of batches to list")

	rootCmd.AddCommand(historyCmd)
}
