package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the relgate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("relgate version %s\n", version.Get())
	},
}
