package main

import (
	"os"

	"github.com/spf13/cobra"

	"stationeye/internal/version"
	"stationeye/pkg/log"
)

var (
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "stationeye",
	Short: "stationeye is a live safety equipment detection console",
	Long: `stationeye streams camera frames to an object detection backend and keeps a
log of the safety equipment it reports.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/stationeye.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(detectCommand)
	rootCmd.AddCommand(tokenCommand)
	rootCmd.AddCommand(versionCommand)
}

func main() {
	Execute()
}
