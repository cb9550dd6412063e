package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wahaj323/quizengine/internal/builder"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	// Skips config loading so version works anywhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("quizengine", version)
		fmt.Println("quiz document schema", builder.SchemaVersion)
	},
}
