package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDefault string
var rootCmd = &cobra.Command{
	Use:   "collab-note-service",
	Short: "Collab Note Service",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
