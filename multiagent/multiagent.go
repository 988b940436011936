// Package multiagent implements the coordinator that routes a request
// across named sub-agents via handoff (§4.6). The node registry and
// hop-forwarding are grounded on the teacher's runtime/a2a package (an
// agent-to-agent skill-routing provider/registry over HTTP), adapted here
// to in-process routing among react.Agent instances since this system
// defines no wire protocol for agent-to-agent calls.
package multiagent

import (
	"context"
	"fmt"

	"github.com/agentcore/agentcore/react"
)

// DefaultMaxHandoffs bounds the number of node executions (the entry node's
// run counts as the first) in a single Coordinator.Invoke call when New is
// given maxHandoffs <= 0.
const DefaultMaxHandoffs = 5

// AgentNode wraps an Agent with the metadata the coordinator and its
// handoff strategies use to route between nodes.
type AgentNode struct {
	Name            string
	Description     string
	Tags            []string
	Priority        int
	CanReturnResult bool
	Agent           *react.Agent
}

// Coordinator routes a request through a graph of named AgentNodes,
// starting at EntryPoint and following the configured HandoffStrategy's
// decisions until it returns Final or the hop count reaches MaxHandoffs.
type Coordinator struct {
	nodes       map[string]AgentNode
	entryPoint  string
	maxHandoffs int
	strategy    HandoffStrategy
}

// New builds a Coordinator. entryPoint must name a node present in nodes.
// maxHandoffs <= 0 uses DefaultMaxHandoffs. strategy defaults to
// NewResponseMarkerStrategy() when nil.
func New(nodes []AgentNode, entryPoint string, maxHandoffs int, strategy HandoffStrategy) (*Coordinator, error) {
	byName := make(map[string]AgentNode, len(nodes))
	for _, n := range nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("multiagent: node has empty name")
		}
		if n.Agent == nil {
			return nil, fmt.Errorf("multiagent: node %q has a nil agent", n.Name)
		}
		byName[n.Name] = n
	}
	if _, ok := byName[entryPoint]; !ok {
		return nil, fmt.Errorf("multiagent: entry point %q is not a registered node", entryPoint)
	}
	if maxHandoffs <= 0 {
		maxHandoffs = DefaultMaxHandoffs
	}
	if strategy == nil {
		strategy = NewResponseMarkerStrategy()
	}
	return &Coordinator{nodes: byName, entryPoint: entryPoint, maxHandoffs: maxHandoffs, strategy: strategy}, nil
}

// descriptions returns the description map handoff strategies consult when
// deciding where to route next: name -> description.
func (c *Coordinator) descriptions() map[string]string {
	out := make(map[string]string, len(c.nodes))
	for name, n := range c.nodes {
		out[name] = n.Description
	}
	return out
}

// Invoke runs req against the entry-point node, then follows the
// coordinator's HandoffStrategy across nodes until it reports Final or the
// hop count reaches MaxHandoffs (§4.6: on exceeding, the last response is
// returned unchanged). Each hop forwards the full accumulated conversation
// state, not just the latest message.
func (c *Coordinator) Invoke(ctx context.Context, req react.Request) (react.Response, error) {
	entry := c.nodes[c.entryPoint]
	resp, err := entry.Agent.Invoke(ctx, req)
	if err != nil {
		return react.Response{}, err
	}
	if resp.Interrupt != nil {
		return resp, nil
	}

	current := c.entryPoint
	hops := 1

	for {
		decision, err := c.strategy.Decide(ctx, resp.Output, c.descriptions(), current)
		if err != nil {
			return resp, fmt.Errorf("multiagent: handoff decision failed at node %q: %w", current, err)
		}
		if decision.Final {
			return resp, nil
		}

		if hops+1 > c.maxHandoffs {
			// §4.6: halt and return the last response unchanged.
			return resp, nil
		}
		hops++

		next, ok := c.nodes[decision.Target]
		if !ok {
			return resp, fmt.Errorf("multiagent: handoff from %q targets unknown node %q", current, decision.Target)
		}

		hopReq := react.Request{Input: decision.Message, UserID: req.UserID, SessionID: req.SessionID}
		resp, err = next.Agent.InvokeWithState(ctx, resp.State, hopReq)
		if err != nil {
			return react.Response{}, err
		}
		if resp.Interrupt != nil {
			return resp, nil
		}
		current = decision.Target
	}
}
