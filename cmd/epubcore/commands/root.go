package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "epubcore",
	Short: "epubcore inspects EPUB 2/3 files",
	Long: `epubcore is a read-only inspection tool over the epubcore library:
metadata, table of contents, and structural validity, with no write path.`,
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
