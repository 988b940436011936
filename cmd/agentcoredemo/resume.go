package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentcore/agentcore/agentconfig"
	"github.com/agentcore/agentcore/middleware"
	"github.com/agentcore/agentcore/middleware/builtin"
	"github.com/agentcore/agentcore/react"
	"github.com/agentcore/agentcore/telemetry"
	"github.com/agentcore/agentcore/tools"
)

var (
	resumeThreadFlag     string
	resumeCheckpointFlag string
	resumeRejectFlag     string
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a session suspended at a human-in-the-loop approval point",
	RunE:  runResume,
}

func init() {
	resumeCmd.Flags().StringVarP(&providerFlag, "provider", "p", "anthropic", "chat model provider: anthropic or openai")
	resumeCmd.Flags().StringVarP(&modelIDFlag, "model", "m", "", "provider model id (defaults per-provider)")
	resumeCmd.Flags().StringVar(&dbPathFlag, "db", "", "sqlite checkpoint path the run used; required to resume")
	resumeCmd.Flags().StringVar(&resumeThreadFlag, "thread", "", "thread id to resume (required)")
	resumeCmd.Flags().StringVar(&resumeCheckpointFlag, "checkpoint", "", "checkpoint id printed at suspension (required)")
	resumeCmd.Flags().StringVar(&resumeRejectFlag, "reject", "", "reject the pending tool call with this reason instead of approving it")
}

func runResume(cmd *cobra.Command, args []string) error {
	if configPath == "" || resumeThreadFlag == "" || resumeCheckpointFlag == "" {
		return fmt.Errorf("--config, --thread, and --checkpoint are required")
	}
	if dbPathFlag == "" {
		return fmt.Errorf("--db is required: resume needs the same durable checkpoint store the run used")
	}

	cfg, err := agentconfig.Load(configPath)
	if err != nil {
		return err
	}
	model, err := buildModel()
	if err != nil {
		return err
	}
	checkpointer, closeStore, err := buildCheckpointer()
	if err != nil {
		return err
	}
	defer closeStore()

	registry := tools.NewRegistry()
	registry.Register(clockTool{})
	invoker := tools.NewInvoker(registry, 4)
	defer invoker.Shutdown()

	chain := middleware.NewChain(
		builtin.NewLogging(telemetry.NewNoopLogger(), cmd.Context(), builtin.LoggingPriority),
		builtin.NewHumanInTheLoop(builtin.ApprovalAlways, nil, 10),
	)
	agent := react.New(model, invoker, nil, checkpointer, chain, cfg.AgentConfig())

	var resumeCmdValue react.ResumeCommand
	if resumeRejectFlag != "" {
		resumeCmdValue = react.Reject(resumeRejectFlag)
	} else {
		resumeCmdValue = react.Approve()
	}

	resp, err := agent.Resume(cmd.Context(), resumeThreadFlag, resumeCheckpointFlag, resumeCmdValue)
	if err != nil {
		return err
	}
	if resp.Interrupt != nil {
		fmt.Printf("[paused again: approval required for tool %q, checkpoint %s]\n", resp.Interrupt.PendingCall.Name, resp.CheckpointID)
		return nil
	}
	fmt.Println(resp.Output)
	return nil
}
