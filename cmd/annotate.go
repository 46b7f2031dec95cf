package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mendtool/mend/internal/console"
	"github.com/mendtool/mend/internal/fileops"
	"github.com/mendtool/mend/internal/resolve"
)

var diffFile string

var annotateCmd = &cobra.Command{
	Use:   "annotate FILE",
	Short: "Weave unified-diff annotations into a numbered listing of FILE",
	Long: `Produces the numbered listing of FILE (path header plus "N:content" lines)
with the hunks of a unified diff woven in: added lines appear at their
new-file line numbers, removed lines appear inline at the point of deletion.
The diff text is read from --diff or stdin; how it is obtained (git or
otherwise) is up to the caller.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnnotate(args[0])
	},
}

func init() {
	annotateCmd.Flags().StringVar(&diffFile, "diff", "", "Read unified-diff text from this file instead of stdin")

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(rel string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	console.ConfigureColor(cfg.Color)

	diffText, err := readInput(diffFile)
	if err != nil {
		return err
	}

	manager := fileops.NewManager(rootDir, console.NewTerminal(), resolve.Passthrough{}, os.Stdout)
	if err := manager.Track(rel); err != nil {
		return fmt.Errorf("tracking %s: %w", rel, err)
	}

	message, err := manager.AnnotatedFileMessage(rel, diffText)
	if err != nil {
		return err
	}
	for _, line := range message {
		fmt.Println(line)
	}
	return nil
}
