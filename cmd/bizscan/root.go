package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for bizscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bizscan",
		Short: "Extract structured business information from websites",
		Long: `bizscan crawls a business website and extracts structured information
(contacts, ratings, services, hours, licensing) from its schema.org
JSON-LD markup, falling back to HTML pattern heuristics where no
markup exists.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
