package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// set at build time
var version = "dev"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the sweeparr version",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if v == "dev" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
		}
		fmt.Printf("sweeparr %s\n", v)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
