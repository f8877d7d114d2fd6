package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "reviewkit",
	Short: "reviewkit runs resilient LLM code reviews.",
	Long: `A command-line interface for the reviewkit engine: it reviews a diff
through an adaptive retry controller and a cascading degradation pipeline,
always producing a result even when the model provider misbehaves.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
