package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stationeye/internal/version"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s/%s\n", version.VERSION, version.COMMIT)
	},
}
