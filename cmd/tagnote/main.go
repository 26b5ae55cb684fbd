package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/totegamma/tagnote/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "tagnote",
		Short:        "Notes organized by tags",
		SilenceUsage: true,
		Version:      version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("TAGNOTE_CONFIG"), "path to config.yaml")

	load := func() (config.Config, error) {
		return config.Load(configPath)
	}

	rootCmd.AddCommand(newServeCmd(load))
	rootCmd.AddCommand(newMigrateCmd(load))
	rootCmd.AddCommand(newAddCmd(load))
	rootCmd.AddCommand(newListCmd(load))
	rootCmd.AddCommand(newSearchCmd(load))
	rootCmd.AddCommand(newEditCmd(load))
	rootCmd.AddCommand(newDeleteCmd(load))
	rootCmd.AddCommand(newTagsCmd(load))

	return rootCmd
}
