// Command agentcoredemo is a runnable demonstration harness for the
// agentcore execution core: it wires a single react.Agent from a YAML
// config file and either provider adapter and drives it from the terminal.
// It is not part of the core library — only a CLI demonstration shell in
// the teacher's tradition of a thin cmd/ entry point over library packages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agentcoredemo",
	Short: "Demonstration CLI for the agentcore ReAct execution loop",
	Long: `agentcoredemo drives a react.Agent from the terminal, wiring together a
chat model provider, a tool registry, a checkpoint store, and the built-in
middleware (logging, human-in-the-loop approval, state injection,
summarization) from a single YAML config file.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to agent config YAML (required)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
