package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the explicit config path. Empty means discovery.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "llmgate",
	Short: "llmgate - OpenAI-compatible gateway for Ollama",
	Long: `llmgate exposes an OpenAI-style REST API (chat completions, text
completions, model listing) and forwards each request to an Ollama server.

It validates requests, fills in configured defaults for model, temperature
and max_tokens, and reports token usage for every response.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: discovered)")
}
