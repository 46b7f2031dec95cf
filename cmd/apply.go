package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mendtool/mend/internal/change"
	"github.com/mendtool/mend/internal/config"
	"github.com/mendtool/mend/internal/console"
	"github.com/mendtool/mend/internal/fileops"
	"github.com/mendtool/mend/internal/history"
	"github.com/mendtool/mend/internal/resolve"
)

var (
	responseFile string
	contextFiles []string
	noHistory    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Parse edit directives from a model response and apply them",
	Long: `Reads a model response containing @@start/@@end edit directive blocks from a
file or stdin, resolves conflicts between the directives, and applies them to
the files in the project root. Files targeted by line edits must be listed as
context with --context; create-file targets need not be.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApply(cmd)
	},
}

func init() {
	applyCmd.Flags().StringVarP(&responseFile, "file", "f", "", "Read the model response from this file instead of stdin")
	applyCmd.Flags().StringSliceVarP(&contextFiles, "context", "C", nil, "Tracked files that were presented as editable context (repeatable)")
	applyCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this batch in the history journal")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	console.ConfigureColor(cfg.Color)
	printer := console.NewPrinter(os.Stdout)

	text, err := readInput(responseFile)
	if err != nil {
		return err
	}

	directives, err := change.ParseResponse(text)
	if err != nil {
		return err
	}
	if len(directives) == 0 {
		printer.Warnf("No edit directives found in input")
		return nil
	}

	asker := console.NewTerminal()
	manager := fileops.NewManager(rootDir, asker, resolve.Interactive{Asker: asker}, os.Stdout)
	for _, rel := range contextFiles {
		if err := manager.Track(rel); err != nil {
			return fmt.Errorf("tracking %s: %w", rel, err)
		}
	}

	applied, err := manager.ApplyChanges(directives)
	if err != nil {
		return err
	}

	// Only directives that took effect belong in the journal.
	if noHistory || cfg.History.Disabled || len(applied) == 0 {
		return nil
	}
	journal, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		printer.Warnf("Not recording history: %v", err)
		return nil
	}
	defer journal.Close()

	entries := make([]history.Entry, 0, len(applied))
	for _, d := range applied {
		entries = append(entries, history.Entry{
			File:      d.File,
			Action:    d.Action.String(),
			FirstLine: d.FirstChangedLine,
			LastLine:  d.LastChangedLine,
		})
	}
	id, err := journal.RecordBatch(ctx, entries)
	if err != nil {
		printer.Warnf("Not recording history: %v", err)
		return nil
	}
	printer.Infof("Recorded batch %s (%d directives)", id, len(entries))
	return nil
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.FindDefaultConfigPath()
	}
	return config.Load(path)
}

func readInput(path string) (string, error) {
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(content), nil
}
