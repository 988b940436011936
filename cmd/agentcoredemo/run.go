package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentcore/agentcore/agentconfig"
	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/chatmodel/anthropic"
	"github.com/agentcore/agentcore/chatmodel/openaicompat"
	"github.com/agentcore/agentcore/checkpoint"
	"github.com/agentcore/agentcore/checkpoint/inmem"
	"github.com/agentcore/agentcore/checkpoint/sqlstore"
	"github.com/agentcore/agentcore/middleware"
	"github.com/agentcore/agentcore/middleware/builtin"
	"github.com/agentcore/agentcore/react"
	"github.com/agentcore/agentcore/telemetry"
	"github.com/agentcore/agentcore/tools"
)

var (
	providerFlag  string
	modelIDFlag   string
	threadFlag    string
	dbPathFlag    string
	approveAlways bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive session against a configured agent",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&providerFlag, "provider", "p", "anthropic", "chat model provider: anthropic or openai")
	runCmd.Flags().StringVarP(&modelIDFlag, "model", "m", "", "provider model id (defaults per-provider)")
	runCmd.Flags().StringVarP(&threadFlag, "thread", "t", "", "thread id to resume; falls back to the config's defaultThreadID, and a new one is minted if both are empty")
	runCmd.Flags().StringVar(&dbPathFlag, "db", "", "sqlite checkpoint path; in-memory store used when empty")
	runCmd.Flags().BoolVar(&approveAlways, "approve-tools", false, "require interactive approval before every tool call")
}

func buildModel() (chatmodel.Model, error) {
	switch strings.ToLower(providerFlag) {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		modelID := modelIDFlag
		if modelID == "" {
			modelID = "claude-sonnet-4-20250514"
		}
		return anthropic.NewFromAPIKey(apiKey, modelID, 4096)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		modelID := modelIDFlag
		if modelID == "" {
			modelID = "gpt-4o"
		}
		return openaicompat.NewFromAPIKey(apiKey, modelID)
	default:
		return nil, fmt.Errorf("unknown provider %q (want anthropic or openai)", providerFlag)
	}
}

func buildCheckpointer() (checkpoint.Checkpointer, func(), error) {
	if dbPathFlag == "" {
		return inmem.New(), func() {}, nil
	}
	store, err := sqlstore.Open(dbPathFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return fmt.Errorf("--config is required")
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

	toolDefs := []chatmodel.ToolDefinition{
		{Name: clockTool{}.Name(), Description: clockTool{}.Description(), Parameters: clockTool{}.ParametersSchema()},
	}

	mode := builtin.ApprovalNever
	if approveAlways {
		mode = builtin.ApprovalAlways
	}
	chain := middleware.NewChain(
		builtin.NewLogging(telemetry.NewNoopLogger(), cmd.Context(), builtin.LoggingPriority),
		builtin.NewHumanInTheLoop(mode, nil, 10),
	)

	agent := react.New(model, invoker, toolDefs, checkpointer, chain, cfg.AgentConfig())

	threadID := threadFlag
	if threadID == "" {
		threadID = cfg.DefaultThreadID
	}

	return chatLoop(cmd.Context(), agent, threadID)
}

func chatLoop(ctx context.Context, agent *react.Agent, threadID string) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("agentcoredemo: type a message and press enter (Ctrl+D to quit)")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		resp, err := agent.Invoke(ctx, react.Request{Input: input, ThreadID: threadID})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		threadID = resp.ThreadID

		if resp.Interrupt != nil {
			fmt.Printf("[paused: approval required for tool %q, checkpoint %s]\n", resp.Interrupt.PendingCall.Name, resp.CheckpointID)
			fmt.Println("resume with: agentcoredemo resume --config ... --thread", threadID, "--checkpoint", resp.CheckpointID)
			continue
		}
		fmt.Println(resp.Output)
	}
}
