package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gramfuzz",
	Short: "Grammar-driven test-case generator",
	Long:  `gramfuzz drives the grammar generation engine over a small set of built-in demonstration grammars.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "generation",
		Title: "Generation",
	})

	rootCmd.AddCommand(generateCmd)
}
