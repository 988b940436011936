package multiagent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/message"
)

// HandoffDecision is the outcome of a HandoffStrategy's Decide call: either
// terminate (Final) or route to Target with Message as the next node's
// input.
type HandoffDecision struct {
	Final   bool
	Target  string
	Message string
}

// HandoffStrategy decides, after a node's output is produced, whether the
// coordinator should stop or hand off to another node (§4.6).
type HandoffStrategy interface {
	Decide(ctx context.Context, output string, nodeDescriptions map[string]string, current string) (HandoffDecision, error)
}

var (
	colonMarker   = regexp.MustCompile(`(?is)handoff:([^:\s]+):(.*)$`)
	bracketMarker = regexp.MustCompile(`(?is)\[handoff\s+([^\]\s]+)\]\s*(.*)$`)
)

// ResponseMarkerStrategy scans a node's output for one of two handoff
// markers: "HANDOFF:targetName:message" or "[HANDOFF targetName] message",
// matching "HANDOFF" case-insensitively. Absent a marker, it terminates.
type ResponseMarkerStrategy struct{}

// NewResponseMarkerStrategy builds the default handoff strategy.
func NewResponseMarkerStrategy() *ResponseMarkerStrategy { return &ResponseMarkerStrategy{} }

// Decide implements HandoffStrategy.
func (ResponseMarkerStrategy) Decide(_ context.Context, output string, _ map[string]string, _ string) (HandoffDecision, error) {
	if m := colonMarker.FindStringSubmatch(output); m != nil {
		return HandoffDecision{Target: m[1], Message: strings.TrimSpace(m[2])}, nil
	}
	if m := bracketMarker.FindStringSubmatch(output); m != nil {
		return HandoffDecision{Target: m[1], Message: strings.TrimSpace(m[2])}, nil
	}
	return HandoffDecision{Final: true}, nil
}

// finalToken is the literal a SupervisorStrategy model must emit to halt
// routing (§9 Open Question: not protocol-stable across unrelated models,
// kept as-is per the original design since no structured-output pathway is
// specified).
const finalToken = "FINAL"

// SupervisorStrategy prompts an auxiliary ChatModel with the current node's
// output and the description of every available node, expecting the model
// to respond with either a node name or the literal "FINAL".
type SupervisorStrategy struct {
	model chatmodel.Model
}

// NewSupervisorStrategy builds a SupervisorStrategy backed by model.
func NewSupervisorStrategy(model chatmodel.Model) *SupervisorStrategy {
	return &SupervisorStrategy{model: model}
}

// Decide implements HandoffStrategy.
func (s *SupervisorStrategy) Decide(ctx context.Context, output string, nodeDescriptions map[string]string, current string) (HandoffDecision, error) {
	names := make([]string, 0, len(nodeDescriptions))
	for name := range nodeDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "You are routing a multi-agent conversation. The node %q just produced this output:\n\n", current)
	b.WriteString(output)
	b.WriteString("\n\nAvailable nodes:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, nodeDescriptions[name])
	}
	b.WriteString("\nRespond with exactly one node name to hand off to, or the literal FINAL to stop. No other text.")

	reply, err := s.model.Chat(ctx, []message.Message{message.NewHuman(b.String(), "", time.Now())}, chatmodel.Options{})
	if err != nil {
		return HandoffDecision{}, fmt.Errorf("multiagent: supervisor model call failed: %w", err)
	}

	decision := strings.TrimSpace(reply.Content())
	if strings.EqualFold(decision, finalToken) {
		return HandoffDecision{Final: true}, nil
	}
	if _, ok := nodeDescriptions[decision]; !ok {
		return HandoffDecision{}, fmt.Errorf("multiagent: supervisor named unknown node %q", decision)
	}
	return HandoffDecision{Target: decision}, nil
}
