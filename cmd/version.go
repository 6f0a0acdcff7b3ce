package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X github.com/fredr0ck/honey-potter/cmd.potterctlVersion=x.y.z"
var potterctlVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the potterctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "potterctl version %s\n", potterctlVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
