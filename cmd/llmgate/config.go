package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/edgelab/llmgate/pkg/config"
	"github.com/edgelab/llmgate/pkg/debug"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Load configuration the same way "serve" does (defaults, config file,
environment) and print the result as YAML. Fails if the configuration is
invalid.`,
	RunE: printConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	logCloser := debug.Init(cfg.Logging)
	defer logCloser.Close()

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))
	if cats := debug.Categories(); len(cats) > 0 {
		fmt.Fprintf(out, "# active debug categories: %s\n", strings.Join(cats, ", "))
	}
	return nil
}
