// Package cmd implements execqctl, a thin operator CLI that talks to a
// running orchestrator's HTTP surface. It carries no core logic of its
// own — every subcommand is a typed client of the endpoints pkg/httpapi
// registers.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	baseURL string

	rootCmd = &cobra.Command{
		Use:   "execqctl",
		Short: "CLI for interacting with a running execq orchestrator",
		Long: `execqctl is a small command-line tool for interacting with a running
execq orchestrator's HTTP surface. It submits batches of jobs, polls
queue/worker status, and checks orchestrator health.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}
)

func loadConfig() error {
	v := viper.New()
	v.SetEnvPrefix("EXECQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		for _, name := range []string{"execq.yaml", "execq.yml", ".execq.yaml"} {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				if err := v.ReadInConfig(); err == nil {
					break
				}
			}
		}
	}

	v.SetDefault("base_url", "http://localhost:8080")
	if baseURL == "" {
		baseURL = v.GetString("base_url")
	}
	return nil
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML). Searches: execq.yaml, execq.yml, .execq.yaml")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "base URL of the orchestrator's HTTP surface (overrides config/env)")
}
