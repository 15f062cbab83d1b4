// Package main is the entry point for the progression API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "progression-api",
	Short: "LitRPG progression API server",
	Long:  `progression-api serves character sheets whose stats, energy pools, arts and traits are derived from a shared experience curve.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
