package cmd

import (
	"fmt"

	"github.com/notehive/collab-note-service/internal/app"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info and exit. // 打印版本信息并退出。",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s (git %s, built %s)\n", app.Name, app.Version, app.GitTag, app.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
