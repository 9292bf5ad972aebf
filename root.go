package main

import (
	"github.com/spf13/cobra"
)

// version задается при сборке через ldflags
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:           "mockinterview",
	Short:         "Тренажер собеседований с голосовым интервьюером",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "путь к YAML файлу настроек (например config/mockinterview.yaml)")
}
